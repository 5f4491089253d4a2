package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ebookpipe/epubcore"
)

var (
	inspectJSON    bool
	inspectCover   string
	inspectSplit   bool
	inspectContent bool
)

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print metadata as JSON")
	inspectCmd.Flags().StringVar(&inspectCover, "extract-cover", "", "extract the cover image to this file path")
	inspectCmd.Flags().BoolVar(&inspectSplit, "split", false, "enable chapter splitting for over-long chapters")
	inspectCmd.Flags().BoolVar(&inspectContent, "content-only", false, "list ContentChapters() instead of the full chapter tree (excludes license pages)")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] input.epub",
	Short: "Print an EPUB's metadata, table of contents, and warnings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inputFile := args[0]

		book, err := epubcore.Open(inputFile, epubcore.WithSplitEnabled(inspectSplit))
		if err != nil {
			return fmt.Errorf("opening %s: %w", inputFile, err)
		}
		defer book.Close()

		if inspectCover != "" {
			if book.CoverImage == nil {
				return fmt.Errorf("no cover image found in %s", inputFile)
			}
			if err := os.WriteFile(inspectCover, book.CoverImage.Data, 0o644); err != nil {
				return fmt.Errorf("writing cover to %s: %w", inspectCover, err)
			}
			fmt.Printf("Cover exported to %s\n", inspectCover)
			return nil
		}

		if inspectJSON {
			return printJSON(book)
		}
		printText(book)
		return nil
	},
}

func printText(book *epubcore.Book) {
	fmt.Println("--- Metadata ---")
	fmt.Printf("Title:    %s\n", book.Title)
	if len(book.Authors) > 0 {
		fmt.Printf("Authors:  %s\n", strings.Join(book.Authors, ", "))
	}
	fmt.Printf("Version:  %s\n", book.Schema.Package.Version)
	if book.FontObfuscated {
		fmt.Println("Fonts:    obfuscated (not DRM)")
	}
	for _, w := range book.Warnings {
		fmt.Printf("Warning:  %s\n", w)
	}
	if book.CoverImage != nil {
		fmt.Printf("Cover:    found (%s, %d bytes)\n", book.CoverImage.MediaType, len(book.CoverImage.Data))
	} else {
		fmt.Println("Cover:    not found")
	}

	fmt.Println("\n--- Table of contents ---")
	chapters := book.Chapters
	if inspectContent {
		chapters = book.ContentChapters()
	}
	printChapters(chapters, 0)
}

func printChapters(chapters []epubcore.Chapter, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, c := range chapters {
		marker := ""
		if c.IsLicense {
			marker = " [license]"
		}
		fmt.Printf("%s- %s (%s)%s\n", indent, c.Title, c.ContentFileName, marker)
		printChapters(c.SubChapters, depth+1)
	}
}

type inspectMetadataJSON struct {
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Version    string   `json:"version"`
	Obfuscated bool     `json:"fontObfuscated"`
	Warnings   []string `json:"warnings"`
	HasCover   bool     `json:"hasCover"`
	Chapters   int      `json:"chapterCount"`
}

func printJSON(book *epubcore.Book) error {
	out := inspectMetadataJSON{
		Title:      book.Title,
		Authors:    book.Authors,
		Version:    string(book.Schema.Package.Version),
		Obfuscated: book.FontObfuscated,
		Warnings:   book.Warnings,
		HasCover:   book.CoverImage != nil,
		Chapters:   len(book.Chapters),
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
