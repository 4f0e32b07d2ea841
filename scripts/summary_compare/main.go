package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/wallsetting-api/internal/dto"
	"github.com/noah-isme/wallsetting-api/internal/models"
	"github.com/noah-isme/wallsetting-api/internal/repository"
	"github.com/noah-isme/wallsetting-api/internal/service"
	"github.com/noah-isme/wallsetting-api/pkg/config"
	"github.com/noah-isme/wallsetting-api/pkg/database"
)

type comparison struct {
	Brand   string
	Left    *dto.BrandScheduleView
	Right   *dto.BrandScheduleView
	Matches bool
}

func main() {
	var (
		apiBase string
		day     string
		timeout time.Duration
	)

	flag.StringVar(&apiBase, "api-base", "", "Optional running API base URL (e.g. http://localhost:8080/api/v1) to compare as well")
	flag.StringVar(&day, "today", "", "Reference day YYYY-MM-DD (defaults to today in SUMMARY_TIMEZONE)")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	today, err := referenceDay(day, cfg.Summary.Timezone)
	if err != nil {
		log.Fatalf("invalid -today: %v", err)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	sqlViews, err := build(ctx, repository.NewScheduleSummaryRepository(db), today)
	if err != nil {
		log.Fatalf("sql source: %v", err)
	}
	memViews, err := build(ctx, service.NewRecordSummarySource(repository.NewScheduleRepository(db)), today)
	if err != nil {
		log.Fatalf("memory source: %v", err)
	}

	breaking := report("sql vs memory", compareViews(sqlViews, memViews))

	if apiBase != "" {
		apiViews, err := fetch(ctx, &http.Client{Timeout: timeout}, apiBase)
		if err != nil {
			log.Fatalf("api request failed: %v", err)
		}
		breaking += report("api vs memory", compareViews(apiViews, memViews))
	}

	fmt.Printf("Reference day: %s, breaking diffs: %d\n", today, breaking)
	if breaking > 0 {
		os.Exit(1)
	}
}

func referenceDay(raw, tz string) (models.Date, error) {
	if strings.TrimSpace(raw) != "" {
		return models.ParseDate(raw)
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return models.Date{}, err
	}
	return models.DateOf(time.Now().In(loc)), nil
}

func build(ctx context.Context, source service.SummarySource, today models.Date) ([]dto.BrandScheduleView, error) {
	cycles, err := source.CycleSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("cycle summaries: %w", err)
	}
	next, err := source.NextSettings(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("next settings: %w", err)
	}
	return service.MergeSummary(cycles, next), nil
}

func fetch(ctx context.Context, client *http.Client, base string) ([]dto.BrandScheduleView, error) {
	url := strings.TrimRight(base, "/") + "/schedule-summary"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	var envelope struct {
		Data []dto.BrandScheduleView `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode body: %w", err)
	}
	return envelope.Data, nil
}

// compareViews matches brands by name; order is not significant.
func compareViews(left, right []dto.BrandScheduleView) []comparison {
	index := func(views []dto.BrandScheduleView) map[string]*dto.BrandScheduleView {
		out := make(map[string]*dto.BrandScheduleView, len(views))
		for i := range views {
			out[views[i].BrandName] = &views[i]
		}
		return out
	}
	l, r := index(left), index(right)

	names := make([]string, 0, len(l)+len(r))
	for name := range l {
		names = append(names, name)
	}
	for name := range r {
		if _, ok := l[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	comps := make([]comparison, 0, len(names))
	for _, name := range names {
		comp := comparison{Brand: name, Left: l[name], Right: r[name]}
		comp.Matches = comp.Left != nil && comp.Right != nil && viewsEqual(*comp.Left, *comp.Right)
		comps = append(comps, comp)
	}
	return comps
}

func viewsEqual(a, b dto.BrandScheduleView) bool {
	if a.BrandName != b.BrandName || a.NameKR != b.NameKR {
		return false
	}
	if len(a.Walls) != len(b.Walls) || (len(a.Walls) > 0 && !reflect.DeepEqual(a.Walls, b.Walls)) {
		return false
	}
	if (a.NextSetting == nil) != (b.NextSetting == nil) {
		return false
	}
	if a.NextSetting != nil {
		return a.NextSetting.WallName == b.NextSetting.WallName && a.NextSetting.Date.String() == b.NextSetting.Date.String()
	}
	return true
}

func report(title string, comps []comparison) int {
	fmt.Printf("== %s\n", title)
	fmt.Printf("%-30s | %-6s | %s\n", "Brand", "Match", "Detail")
	fmt.Println(strings.Repeat("-", 80))
	diffs := 0
	for _, comp := range comps {
		detail := ""
		switch {
		case comp.Left == nil:
			detail = "missing on left"
		case comp.Right == nil:
			detail = "missing on right"
		case !comp.Matches:
			detail = describe(*comp.Left) + " != " + describe(*comp.Right)
		}
		if !comp.Matches {
			diffs++
		}
		fmt.Printf("%-30s | %-6t | %s\n", comp.Brand, comp.Matches, detail)
	}
	fmt.Println()
	return diffs
}

func describe(v dto.BrandScheduleView) string {
	data, err := json.Marshal(v)
	if err != nil {
		return err.Error()
	}
	return string(data)
}
