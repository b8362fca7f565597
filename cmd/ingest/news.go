package main

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"stocklens/pkg/database"
	"stocklens/services/news"
)

// addNews handles the interactive article input flow
func addNews(ctx context.Context, store *news.Store, in io.Reader) error {
	log.Println("=== Add News Article ===")
	log.Println("The viewer shows articles whose text mentions the symbol (without exchange suffix).")
	log.Println("")

	reader := bufio.NewReader(in)

	fmt.Print("Date (YYYY-MM-DD): ")
	dateStr, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read date: %w", err)
	}
	date, err := database.ParseDate(strings.TrimSpace(dateStr))
	if err != nil {
		return err
	}

	fmt.Print("Polarity (Positive/Negative): ")
	polarity, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read polarity: %w", err)
	}
	polarity = news.NormalizePolarity(polarity)
	if polarity == "" {
		return fmt.Errorf("polarity cannot be empty")
	}

	fmt.Print("Link: ")
	link, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read link: %w", err)
	}
	link = strings.TrimSpace(link)

	fmt.Println("\nPaste the article text. Press Enter twice when done:")
	var contentLines []string
	for {
		line, err := reader.ReadString('\n')
		line = strings.TrimRight(line, "\r\n")
		if line == "" && len(contentLines) > 0 {
			break
		}
		if line != "" {
			contentLines = append(contentLines, line)
		}
		if err != nil {
			break
		}
	}

	if len(contentLines) == 0 {
		return fmt.Errorf("content cannot be empty")
	}

	article := news.Article{
		Date:     date,
		Polarity: polarity,
		Content:  strings.Join(contentLines, " "),
		Link:     link,
	}
	if err := store.Add(ctx, article); err != nil {
		return err
	}

	log.Printf("\n✓ Saved %s article from %s", polarity, date)
	return nil
}

// parseNewsCSV reads date,polarity,content,link rows. A header row and rows
// that fail to parse are skipped with a log line.
func parseNewsCSV(r io.Reader) ([]news.Article, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	var articles []news.Article
	lineNum := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		lineNum++

		if lineNum == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "date") {
			continue
		}
		if len(record) < 3 {
			log.Printf("Skipping line %d: invalid format", lineNum)
			continue
		}

		date, err := database.ParseDate(strings.TrimSpace(record[0]))
		if err != nil {
			log.Printf("Skipping line %d: %v", lineNum, err)
			continue
		}

		article := news.Article{
			Date:     date,
			Polarity: news.NormalizePolarity(record[1]),
			Content:  strings.TrimSpace(record[2]),
		}
		if len(record) > 3 {
			article.Link = strings.TrimSpace(record[3])
		}
		if article.Content == "" {
			log.Printf("Skipping line %d: empty content", lineNum)
			continue
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// importNewsCSV imports articles from a CSV file
func importNewsCSV(ctx context.Context, store *news.Store, path string) error {
	log.Printf("=== Import News from CSV ===")
	log.Printf("Reading from: %s", path)

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer file.Close()

	articles, err := parseNewsCSV(file)
	if err != nil {
		return err
	}

	saved, errs := store.AddMultiple(ctx, articles)
	for _, err := range errs {
		log.Printf("Import error: %v", err)
	}

	log.Printf("\n=== Imported %d of %d articles ===", saved, len(articles))
	return nil
}
