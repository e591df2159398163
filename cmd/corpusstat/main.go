// corpusstat prints size and vocabulary statistics for a corpus file, so a
// run's output can be sanity-checked without opening it.
package main

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: corpusstat <corpus-file> [top-n]")
	}

	corpusPath := os.Args[1]
	topN := 10
	if len(os.Args) > 2 {
		if _, err := fmt.Sscanf(os.Args[2], "%d", &topN); err != nil {
			log.Fatalf("Invalid top-n %q: %v", os.Args[2], err)
		}
	}

	stats, err := collectStats(corpusPath)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("%s: %d bytes, %d words, %d unique\n", corpusPath, stats.bytes, stats.words, len(stats.freq))
	for _, wc := range stats.top(topN) {
		fmt.Printf("  %6d  %s\n", wc.count, wc.word)
	}
}

type corpusStats struct {
	bytes int64
	words int
	freq  map[string]int
}

type wordCount struct {
	word  string
	count int
}

func collectStats(path string) (*corpusStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stating corpus %s: %w", path, err)
	}

	stats := &corpusStats{bytes: info.Size(), freq: make(map[string]int)}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		word := strings.ToLower(strings.Trim(scanner.Text(), `.,;:!?()"'`))
		if word == "" {
			continue
		}
		stats.words++
		stats.freq[word]++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning corpus %s: %w", path, err)
	}

	return stats, nil
}

func (s *corpusStats) top(n int) []wordCount {
	counts := make([]wordCount, 0, len(s.freq))
	for word, count := range s.freq {
		counts = append(counts, wordCount{word: word, count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].word < counts[j].word
	})
	if n > len(counts) {
		n = len(counts)
	}
	return counts[:n]
}
