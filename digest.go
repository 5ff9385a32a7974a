package main

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/slack-go/slack"
)

const digestTopLawyers = 5
const digestRecentWeeks = 4

// FormatDigest renders the Slack message body for a report run.
func FormatDigest(firmName string, now time.Time, sum KPISummary, perf []LawyerStats, weekly []WeeklyCount, narrative string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s — case digest %s*\n", firmName, now.Format("2006-01-02"))
	fmt.Fprintf(&b, "• Active cases: %d\n", sum.TotalCases)
	fmt.Fprintf(&b, "• Total fees: R$ %.2f\n", sum.TotalFees)
	fmt.Fprintf(&b, "• Estimated revenue: R$ %.2f\n", sum.EstimatedRevenue)
	fmt.Fprintf(&b, "• Mean success rate: %.1f%%\n", sum.MeanSuccessProb*100)

	if len(perf) > 0 {
		b.WriteString("\n*Top lawyers by fees*\n")
		for i, p := range perf {
			if i >= digestTopLawyers {
				break
			}
			name := p.Lawyer
			if name == "" {
				name = "(unassigned)"
			}
			fmt.Fprintf(&b, "%d. %s — R$ %.2f (%d cases, %.1f%% success)\n",
				i+1, name, p.TotalFees, p.CaseCount, p.MeanSuccessProb*100)
		}
	}

	if len(weekly) > 0 {
		b.WriteString("\n*New cases by week*\n")
		start := len(weekly) - digestRecentWeeks
		if start < 0 {
			start = 0
		}
		for _, w := range weekly[start:] {
			fmt.Fprintf(&b, "Week of %s: %d\n", w.WeekStart.Format("Jan 2"), w.NewCases)
		}
	}

	if narrative != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(narrative))
		b.WriteString("\n")
	}
	return b.String()
}

// RunReport loads (or reuses) the dataset, applies the configured filter,
// writes the CSV export, records a KPI snapshot and posts the digest when
// Slack is configured. api may be nil in one-shot/headless mode.
func RunReport(cfg Config, db *sql.DB, cache *DatasetCache, api *slack.Client) error {
	ds, _, err := cache.Load()
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	now := time.Now().In(cfg.Location)
	filtered := cfg.ReportFilter().Apply(ds)
	sum := Summarize(filtered)
	perf := LawyerPerformance(filtered)
	weekly := WeeklyNewCases(filtered)
	log.Printf("report run rows=%d filtered=%d fees=%.2f", len(ds.Records), len(filtered), sum.TotalFees)

	csvPath, err := WriteCSVReport(filtered, cfg.ReportOutputDir, now, cfg.FirmName)
	if err != nil {
		return fmt.Errorf("write csv report: %w", err)
	}
	log.Printf("report written to %s", csvPath)

	if err := InsertKPISnapshot(db, sum, now); err != nil {
		log.Printf("Error recording KPI snapshot: %v", err)
	}

	narrative := ""
	if cfg.AnthropicAPIKey != "" {
		text, usage, llmErr := GenerateExecutiveSummary(cfg, sum, perf, weekly)
		if llmErr != nil {
			log.Printf("Executive summary skipped: %v", llmErr)
		} else {
			log.Printf("llm summary tokens_in=%d tokens_out=%d", usage.InputTokens, usage.OutputTokens)
			narrative = text
		}
	}

	if api != nil && cfg.ReportChannelID != "" {
		msg := FormatDigest(cfg.FirmName, now, sum, perf, weekly, narrative)
		if _, _, err := api.PostMessage(cfg.ReportChannelID, slack.MsgOptionText(msg, false)); err != nil {
			return fmt.Errorf("post digest: %w", err)
		}
		log.Printf("digest posted to %s", cfg.ReportChannelID)
	}
	return nil
}

// StartDigestScheduler starts a cron-based scheduler that periodically runs
// the report and posts the digest. The schedule is a standard 5-field cron
// expression (minute hour day-of-month month day-of-week).
func StartDigestScheduler(cfg Config, db *sql.DB, cache *DatasetCache, api *slack.Client) {
	schedule := strings.TrimSpace(cfg.DigestSchedule)
	if schedule == "" {
		log.Println("Digest disabled (digest_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid digest_schedule '%s': %v — digest disabled", schedule, err)
		return
	}
	log.Printf("Digest scheduled (cron: %s) to channel %s", schedule, cfg.ReportChannelID)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next digest at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			time.Sleep(wait)

			if err := RunReport(cfg, db, cache, api); err != nil {
				log.Printf("Digest error: %v", err)
			}
		}
	}()
}
