// =============================================================================
// EDI Codec - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the batch runner,
// including:
//   - Input discovery
//   - Output naming and writing
//   - Archival of accepted inputs
//   - Error and summary logs
//
// All operations go through an afero.Fs: the OS filesystem in production and
// an in-memory one in tests.
//
// ARCHIVAL STRATEGY:
//   - Inputs are moved to the archive directory only when every transaction
//     was acceptable
//   - Rejected and failed inputs remain in their original location
//   - Error and summary logs are created in the output directory
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// InputExtensions are the file extensions picked up from the input directory.
var InputExtensions = []string{".edi", ".x12", ".edifact", ".txt", ".xml", ".json"}

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the batch runner.
type FileManager struct {
	Fs afero.Fs

	// InputDir is the directory where input files are placed.
	InputDir string

	// OutputDir is the directory where output files are placed.
	OutputDir string

	// ArchiveDir receives accepted inputs. Empty disables archiving.
	ArchiveDir string

	// UseTimestampSubdirs creates date-based subdirectories in the archive.
	// Example: archive/2024/01/15/file.edi
	UseTimestampSubdirs bool

	// Now is the clock used for names and logs.
	Now func() time.Time
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(fs afero.Fs, inputDir, outputDir, archiveDir string) *FileManager {
	return &FileManager{
		Fs:         fs,
		InputDir:   inputDir,
		OutputDir:  outputDir,
		ArchiveDir: archiveDir,
		Now:        time.Now,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDirectories creates all required directories if they don't exist.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.InputDir, fm.OutputDir, fm.ArchiveDir} {
		if dir == "" {
			continue
		}
		if err := fm.Fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// InputFile is a discovered input.
type InputFile struct {
	Path string
	Size int64
}

// DiscoverInputFiles lists the input directory for files with one of the
// InputExtensions, sorted by name. Hidden files and directories are skipped.
func (fm *FileManager) DiscoverInputFiles() ([]InputFile, error) {
	entries, err := afero.ReadDir(fm.Fs, fm.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}

	var result []InputFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !IsInputFile(name) {
			continue
		}
		result = append(result, InputFile{Path: filepath.Join(fm.InputDir, name), Size: entry.Size()})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result, nil
}

// Stat describes a single input given by path.
func (fm *FileManager) Stat(path string) (InputFile, error) {
	info, err := fm.Fs.Stat(path)
	if err != nil {
		return InputFile{}, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if info.IsDir() {
		return InputFile{}, fmt.Errorf("%s is a directory", path)
	}
	return InputFile{Path: path, Size: info.Size()}, nil
}

// IsInputFile reports whether the name has one of the InputExtensions.
func IsInputFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range InputExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Open opens an input for reading.
func (fm *FileManager) Open(path string) (io.ReadCloser, error) {
	return fm.Fs.Open(path)
}

// =============================================================================
// FILE ARCHIVAL
// =============================================================================

// ArchiveInputFile moves an input file to the archive directory. An existing
// archive entry of the same name is never overwritten; the new entry gets a
// timestamp suffix instead.
//
// RETURNS:
//   - The path to the archived file, or the original path when archiving is
//     disabled.
//   - An error if archival fails.
func (fm *FileManager) ArchiveInputFile(filePath string) (string, error) {
	if fm.ArchiveDir == "" {
		return filePath, nil
	}

	archivePath := fm.getArchivePath(filePath)
	if err := fm.Fs.MkdirAll(filepath.Dir(archivePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if exists, _ := afero.Exists(fm.Fs, archivePath); exists {
		ext := filepath.Ext(archivePath)
		archivePath = fmt.Sprintf("%s_%s%s", strings.TrimSuffix(archivePath, ext), fm.Now().Format("20060102_150405"), ext)
	}

	if err := fm.Fs.Rename(filePath, archivePath); err != nil {
		// Rename fails across devices; fall back to copy and delete.
		if err := fm.copyFile(filePath, archivePath); err != nil {
			return "", fmt.Errorf("failed to copy file to archive: %w", err)
		}
		if err := fm.Fs.Remove(filePath); err != nil {
			return "", fmt.Errorf("failed to remove original file: %w", err)
		}
	}
	return archivePath, nil
}

func (fm *FileManager) getArchivePath(filePath string) string {
	fileName := filepath.Base(filePath)
	if fm.UseTimestampSubdirs {
		now := fm.Now()
		return filepath.Join(fm.ArchiveDir,
			fmt.Sprintf("%d", now.Year()),
			fmt.Sprintf("%02d", now.Month()),
			fmt.Sprintf("%02d", now.Day()),
			fileName)
	}
	return filepath.Join(fm.ArchiveDir, fileName)
}

// =============================================================================
// OUTPUT FILES
// =============================================================================

// GenerateOutputFileName generates an output file name.
//
// PARAMETERS:
//   - format: The format string for the file name.
//     Placeholders:
//     {original}  - Original file name (without extension)
//     {kind}      - Output kind (ack, translated, report)
//     {uuid}      - The "uuid" param, or a random UUID
//     {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//     {date}      - Current date (YYYYMMDD)
//   - params: A map of placeholder values.
//   - ext: The extension to ensure, without the dot.
//
// EXAMPLE:
//
//	format: "{original}_{kind}_{timestamp}"
//	params: {"original": "acme_0001", "kind": "ack"}
//	ext:    "edi"
//	output: "acme_0001_ack_20240115_143022.edi"
func (fm *FileManager) GenerateOutputFileName(format string, params map[string]string, ext string) string {
	now := fm.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}
	result = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, result)

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), "."+strings.ToLower(ext)) {
		result += "." + ext
	}
	return result
}

// OriginalName returns the base name of an input without its extension.
func OriginalName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// WriteOutput writes data to a file in the output directory.
func (fm *FileManager) WriteOutput(name string, data []byte) (string, error) {
	path := filepath.Join(fm.OutputDir, name)
	if err := afero.WriteFile(fm.Fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry represents a single error log entry.
type ErrorLogEntry struct {
	Timestamp        time.Time
	FileName         string
	ErrorType        string
	ErrorMessage     string
	SegmentID        string
	SegmentPosition  int
	ElementPosition  int
	Value            string
	TransactionIndex int
}

// WriteErrorLog writes error entries to a log file in the output directory.
//
// RETURNS:
//   - The path to the error log file, or "" when there is nothing to log.
//   - An error if writing fails.
func (fm *FileManager) WriteErrorLog(entries []ErrorLogEntry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	now := fm.Now()
	logPath := filepath.Join(fm.OutputDir, fmt.Sprintf("error_log_%s.txt", now.Format("20060102_150405")))
	file, err := fm.Fs.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "EDI Codec - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		now.Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:      %s\n"+
			"  File:           %s\n"+
			"  Error Type:     %s\n"+
			"  Message:        %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.FileName,
			entry.ErrorType,
			entry.ErrorMessage)

		if entry.SegmentID != "" {
			fmt.Fprintf(writer, "  Segment:        %s\n", entry.SegmentID)
		}
		if entry.SegmentPosition > 0 {
			fmt.Fprintf(writer, "  Position:       %d\n", entry.SegmentPosition)
		}
		if entry.ElementPosition > 0 {
			fmt.Fprintf(writer, "  Element:        %d\n", entry.ElementPosition)
		}
		if entry.Value != "" {
			fmt.Fprintf(writer, "  Value:          %s\n", entry.Value)
		}
		if entry.TransactionIndex > 0 {
			fmt.Fprintf(writer, "  Transaction:    %d\n", entry.TransactionIndex)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}
	return logPath, nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a processing run.
type ProcessingSummary struct {
	StartTime         time.Time
	EndTime           time.Time
	TotalFiles        int
	AcceptedFiles     int
	RejectedFiles     int
	FailedFiles       int
	TotalSegments     int
	TotalTransactions int
	TotalErrors       int
	TotalWarnings     int
	TotalCorrections  int
	ProcessedFiles    []ProcessedFileInfo
	FailedFilesList   []FailedFileInfo
}

// ProcessedFileInfo contains information about a processed file.
type ProcessedFileInfo struct {
	InputFile    string
	Partner      string
	Dialect      string
	Acceptable   bool
	Outputs      []string
	ArchivePath  string
	Transactions int
	Errors       int
	ProcessTime  time.Duration
}

// FailedFileInfo contains information about a file that could not be
// processed at all.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
	ErrorType    string
}

// WriteSummaryLog writes a processing summary to the output directory.
func (fm *FileManager) WriteSummaryLog(summary ProcessingSummary) (string, error) {
	summaryPath := filepath.Join(fm.OutputDir,
		fmt.Sprintf("processing_summary_%s.txt", fm.Now().Format("20060102_150405")))

	file, err := fm.Fs.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "EDI Codec - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:        %d\n"+
		"  Accepted:           %d\n"+
		"  Rejected:           %d\n"+
		"  Failed:             %d\n"+
		"  Total Segments:     %d\n"+
		"  Total Transactions: %d\n"+
		"  Errors:             %d\n"+
		"  Warnings:           %d\n"+
		"  Corrections:        %d\n\n",
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.TotalFiles,
		summary.AcceptedFiles,
		summary.RejectedFiles,
		summary.FailedFiles,
		summary.TotalSegments,
		summary.TotalTransactions,
		summary.TotalErrors,
		summary.TotalWarnings,
		summary.TotalCorrections)

	if len(summary.ProcessedFiles) > 0 {
		writer.WriteString("Processed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, pf := range summary.ProcessedFiles {
			status := "accepted"
			if !pf.Acceptable {
				status = "rejected"
			}
			fmt.Fprintf(writer, "  Input:        %s (%s, %s)\n", pf.InputFile, pf.Dialect, status)
			if pf.Partner != "" {
				fmt.Fprintf(writer, "  Partner:      %s\n", pf.Partner)
			}
			for _, out := range pf.Outputs {
				fmt.Fprintf(writer, "  Output:       %s\n", out)
			}
			if pf.ArchivePath != "" {
				fmt.Fprintf(writer, "  Archived:     %s\n", pf.ArchivePath)
			}
			fmt.Fprintf(writer, "  Transactions: %d\n", pf.Transactions)
			fmt.Fprintf(writer, "  Errors:       %d\n", pf.Errors)
			fmt.Fprintf(writer, "  Process Time: %s\n\n", pf.ProcessTime.String())
		}
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Type:  %s\n", ff.ErrorType)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}
	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

func (fm *FileManager) copyFile(src, dst string) error {
	sourceFile, err := fm.Fs.Open(src)
	if err != nil {
		return err
	}
	defer sourceFile.Close()

	destFile, err := fm.Fs.Create(dst)
	if err != nil {
		return err
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return err
	}
	return destFile.Sync()
}
