package main

import (
	"fmt"

	"github.com/TobiSchelling/blogsmith/internal/imagegen"
	"github.com/TobiSchelling/blogsmith/internal/pipeline"
	"github.com/TobiSchelling/blogsmith/internal/publish"
	"github.com/TobiSchelling/blogsmith/internal/seo"
	"github.com/TobiSchelling/blogsmith/internal/wordpress"
)

func printSteps(steps []pipeline.StepResult) {
	for _, step := range steps {
		fmt.Printf("%s:\n", step.Name)
		if step.Summary != "" {
			fmt.Printf("  %s\n", step.Summary)
		}
		if step.Err != nil {
			fmt.Printf("  Error: %v\n", step.Err)
		}
	}
}

func printSEOReport(results []seo.Result, keyword string) {
	fmt.Printf("SEO report (keyword: %q)\n", keyword)
	for _, r := range results {
		mark := "✓"
		switch {
		case r.Warning:
			mark = "!"
		case !r.Passed:
			mark = "✗"
		}
		if r.Detail != "" {
			fmt.Printf("  %s %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Printf("  %s %s\n", mark, r.Name)
		}
	}
	t := seo.Summarize(results)
	fmt.Printf("\nScore: %d/%d checks passed | %d warnings | %d failures\n", t.Passed, t.Total, t.Warnings, t.Failures)
}

func printEvent(e publish.Event) {
	switch e.Status {
	case publish.StatusOK:
		fmt.Printf("  [%s] %s\n", e.Stage, e.Message)
	case publish.StatusSkipped:
		fmt.Printf("  [%s] skipped: %s\n", e.Stage, e.Message)
	default:
		if e.Err != nil {
			fmt.Printf("  [%s] %s: %s (%v)\n", e.Stage, e.Status, e.Message, e.Err)
		} else {
			fmt.Printf("  [%s] %s: %s\n", e.Stage, e.Status, e.Message)
		}
	}
}

func printImageBatch(b *imagegen.Batch) {
	for _, a := range b.Attempts {
		if a.Err != nil {
			fmt.Printf("  %s unavailable: %v\n", a.Provider, a.Err)
		}
	}
	for _, f := range b.Failures {
		fmt.Printf("  image %d failed with %s: %v\n", f.Position, f.Provider, f.Err)
	}
	for _, img := range b.Images {
		fmt.Printf("  image %d: %s (%s)\n", img.Position, img.Path, img.Provider)
	}
}

func printPublishSummary(s *publish.Summary) {
	fmt.Println("WordPress draft created:")
	fmt.Printf("  Post ID: %d\n", s.PostID)
	fmt.Printf("  Edit: %s\n", s.EditURL)
	fmt.Printf("  Images: %s\n", s.ImagesStatus)
	fmt.Printf("  Internal links: %d\n", s.InternalLinksCount)
	if s.RankMathSet {
		fmt.Println("  RankMath: meta set")
	} else {
		fmt.Println("  RankMath: not set")
		printRankMathInstructions(s.Meta)
	}
}

func printRankMathInstructions(m wordpress.SEOMeta) {
	fmt.Println("\nSet the RankMath fields by hand in the post editor:")
	fmt.Printf("  SEO title: %s\n", m.Title)
	fmt.Printf("  Description: %s\n", m.Description)
	fmt.Printf("  Focus keyword: %s\n", m.FocusKeyword)
}

func printRecovery(r *publish.Recovery) {
	fmt.Printf("Updated draft %d", r.PostID)
	if r.Title != "" {
		fmt.Printf(" (%s)", r.Title)
	}
	fmt.Println()
	fmt.Printf("  Images uploaded: %d\n", r.Uploaded)
	if r.FeaturedSet {
		fmt.Println("  Featured image: set")
	} else {
		fmt.Println("  Featured image: not set")
	}
	fmt.Printf("  Edit: %s\n", r.EditURL)
}
