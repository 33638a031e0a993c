package parser

import (
	"bufio"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-automission-monitor/internal/core/model"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

// Parser reads application records from JSONL files, one record per line.
// Parsed files are cached until their size, mtime or inode change.
type Parser struct {
	concurrency int
	mu          sync.Mutex
	cache       map[string]cachedFile
}

type cachedFile struct {
	info    util.FileInfo
	records []model.ApplicationRecord
}

// ParseResult represents the result of parsing a single file.
type ParseResult struct {
	File    string
	Records []model.ApplicationRecord
	Error   error
}

// NewParser creates a Parser that reads at most concurrency files at once.
func NewParser(concurrency int) *Parser {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Parser{
		concurrency: concurrency,
		cache:       make(map[string]cachedFile),
	}
}

// ParseFile returns the records in path in line order. Lines that are not
// valid JSON are skipped. A record without an id gets "<path>:<line>".
func (p *Parser) ParseFile(path string) ([]model.ApplicationRecord, error) {
	info, err := util.GetFileInfo(path)
	if err != nil {
		p.Forget(path)
		return nil, err
	}

	p.mu.Lock()
	if cached, ok := p.cache[path]; ok && cached.info == info {
		p.mu.Unlock()
		return cached.records, nil
	}
	p.mu.Unlock()

	util.LogDebug("Start parsing file", util.F("file", path))

	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []model.ApplicationRecord
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec model.ApplicationRecord
		if err := sonic.Unmarshal(raw, &rec); err != nil {
			util.LogDebug("Skip invalid JSON line", util.F("file", path), util.F("line", line), util.F("error", err))
			continue
		}
		if rec.ID == "" {
			rec.ID = fmt.Sprintf("%s:%d", path, line)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	p.mu.Lock()
	p.cache[path] = cachedFile{info: info, records: records}
	p.mu.Unlock()

	return records, nil
}

// ParseFiles parses files concurrently. Results arrive in completion order
// and the channel closes when all files are done.
func (p *Parser) ParseFiles(files []string) <-chan ParseResult {
	start := time.Now()
	results := make(chan ParseResult, len(files))
	var wg sync.WaitGroup

	semaphore := make(chan struct{}, p.concurrency)

	for _, file := range files {
		wg.Add(1)
		go func(f string) {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			records, err := p.ParseFile(f)
			if err != nil {
				util.LogDebug("File parsing failed", util.F("file", f), util.F("error", err))
			}
			results <- ParseResult{File: f, Records: records, Error: err}
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
		util.LogDebug("Parsing finished", util.F("files", len(files)), util.F("duration", time.Since(start)))
	}()

	return results
}

// Forget drops path from the cache.
func (p *Parser) Forget(path string) {
	p.mu.Lock()
	delete(p.cache, path)
	p.mu.Unlock()
}

// Retain drops every cached file not in keep.
func (p *Parser) Retain(keep []string) {
	set := make(map[string]struct{}, len(keep))
	for _, k := range keep {
		set[k] = struct{}{}
	}
	p.mu.Lock()
	for path := range p.cache {
		if _, ok := set[path]; !ok {
			delete(p.cache, path)
		}
	}
	p.mu.Unlock()
}

// Cached reports how many files are cached.
func (p *Parser) Cached() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cache)
}
