package epubcore_test

import (
	"fmt"
	"log"

	"github.com/ebookpipe/epubcore"
)

func ExampleOpen() {
	book, err := epubcore.Open("testdata/book.epub")
	if err != nil {
		log.Fatal(err)
	}
	defer book.Close()

	fmt.Println(book.Title)
}

func ExampleOpenRef() {
	// OpenRef defers chapter and content reads to the archive instead of
	// materialising every chapter's HTML up front.
	book, err := epubcore.OpenRef("testdata/book.epub")
	if err != nil {
		log.Fatal(err)
	}
	defer book.Close()

	fmt.Println(book.Title)
}

func ExampleBook_ContentChapters() {
	book, err := epubcore.Open("testdata/book.epub")
	if err != nil {
		log.Fatal(err)
	}
	defer book.Close()

	for _, ch := range book.ContentChapters() {
		text, err := ch.TextContent()
		if err != nil {
			continue
		}
		fmt.Printf("%-20s %d chars\n", ch.Title, len(text))
	}
}

func ExampleBook_CoverImage() {
	book, err := epubcore.Open("testdata/book.epub", epubcore.WithCoverFallbackToFirstImage(true))
	if err != nil {
		log.Fatal(err)
	}
	defer book.Close()

	if book.CoverImage == nil {
		fmt.Println("no cover found")
		return
	}
	fmt.Printf("Cover: %s, %d bytes\n", book.CoverImage.MediaType, len(book.CoverImage.Data))
}

func ExampleBook_Landmarks() {
	book, err := epubcore.Open("testdata/book.epub")
	if err != nil {
		log.Fatal(err)
	}
	defer book.Close()

	for _, lm := range book.Landmarks() {
		fmt.Printf("%s → %s\n", lm.Labels, lm.Content.Source)
	}
}
