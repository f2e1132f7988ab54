package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/blogsmith/internal/content"
	"github.com/TobiSchelling/blogsmith/internal/errs"
	"github.com/TobiSchelling/blogsmith/internal/output"
	"github.com/TobiSchelling/blogsmith/internal/pipeline"
	"github.com/TobiSchelling/blogsmith/internal/seo"
	"github.com/TobiSchelling/blogsmith/internal/templates"
)

// --- write command ---

var (
	writeTone        string
	writeProvider    string
	writeType        string
	writeCoreMessage string
	writeNotes       string
	writeKeyword     string
	writeReferences  []string
	writeNoSave      bool
	writeSkipImages  bool
	writeNoPublish   bool
	writeYes         bool
)

var writeCmd = &cobra.Command{
	Use:   "write TOPIC",
	Short: "Write an SEO blog draft: generate -> check -> save -> images -> publish",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		db := openJournal()
		if db != nil {
			defer db.Close()
		}
		pipe := newPipeline(db)

		fmt.Printf("Writing %q...\n", args[0])
		draft, steps, err := pipe.Compose(ctx, pipeline.Request{
			Topic:       args[0],
			Tone:        writeTone,
			Provider:    writeProvider,
			ArticleType: writeType,
			CoreMessage: writeCoreMessage,
			Notes:       writeNotes,
			Keyword:     writeKeyword,
			References:  writeReferences,
		})
		printSteps(steps)
		if err != nil {
			return err
		}

		fmt.Println()
		printSEOReport(draft.SEO, draft.Keyword)

		if writeNoSave {
			pipe.Record(draft)
			fmt.Println("\nDraft not saved (--no-save):")
			fmt.Println()
			fmt.Println(draft.Raw)
			return nil
		}

		if draft.HasHardFailures() && !writeYes && !confirm("Save anyway? [y/N]: ") {
			fmt.Println("Draft discarded.")
			return nil
		}

		delivery, err := pipe.Deliver(ctx, draft, pipeline.DeliverOptions{
			SkipImages: writeSkipImages,
			NoPublish:  writeNoPublish,
		})
		fmt.Println()
		printSteps(delivery.Steps)
		if err != nil {
			return err
		}

		switch {
		case delivery.PublishErr != nil:
			fmt.Printf("\nWordPress publish failed: %v\n", delivery.PublishErr)
			fmt.Printf("Draft saved locally only: %s\n", delivery.Path)
			fmt.Printf("Retry with: blogsmith publish %s\n", delivery.Path)
		case delivery.Publish != nil:
			fmt.Println()
			printPublishSummary(delivery.Publish)
		default:
			fmt.Printf("\nDraft saved: %s\n", delivery.Path)
		}
		return nil
	},
}

func init() {
	f := writeCmd.Flags()
	f.StringVarP(&writeTone, "tone", "t", "", "Template tone (motivational, analytical, direct; default from config)")
	f.StringVarP(&writeProvider, "model", "m", "", "LLM provider: claude, openai, gemini, ollama (default from config)")
	f.StringVar(&writeType, "type", "", "Article type: "+strings.Join(templates.ArticleTypes, ", "))
	f.StringVar(&writeCoreMessage, "core-message", "", "Core message the article should land")
	f.StringVar(&writeNotes, "notes", "", "Extra notes for the prompt")
	f.StringVarP(&writeKeyword, "keyword", "k", "", "Focus keyword (derived from the topic when omitted)")
	f.StringArrayVar(&writeReferences, "reference", nil, "Reference URL to read into the notes (repeatable)")
	f.BoolVar(&writeNoSave, "no-save", false, "Print the draft instead of saving it")
	f.BoolVar(&writeSkipImages, "skip-images", false, "Do not generate or upload images")
	f.BoolVar(&writeNoPublish, "no-publish", false, "Do not publish to WordPress")
	f.BoolVarP(&writeYes, "yes", "y", false, "Save even when SEO checks fail")
}

func confirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	return answer == "y" || answer == "yes"
}

// --- check command ---

var checkKeyword string

var checkCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Run the SEO checks on a saved draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading draft: %w", err)
		}
		doc := content.Parse(string(data))

		keyword := checkKeyword
		if keyword == "" {
			keyword = doc.Field(content.FieldKeyword)
		}
		if keyword == "" {
			return errs.New(errs.Invalid, "no focus keyword in %s; pass --keyword", args[0])
		}

		results := seo.Run(doc, keyword)
		printSEOReport(results, keyword)
		if seo.HasHardFailures(results) {
			return errs.New(errs.Invalid, "%d SEO checks failed", seo.Summarize(results).Failures)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkKeyword, "keyword", "k", "", "Focus keyword (default from the draft metadata)")
}

// --- images command ---

var imagesProvider string

var imagesCmd = &cobra.Command{
	Use:   "images FILE",
	Short: "Generate images for a saved draft and embed them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openJournal()
		if db != nil {
			defer db.Close()
		}

		batch, step, err := newPipeline(db).GenerateImages(cmd.Context(), args[0], imagesProvider)
		if batch != nil {
			printImageBatch(batch)
		}
		printSteps([]pipeline.StepResult{step})
		return err
	},
}

func init() {
	imagesCmd.Flags().StringVarP(&imagesProvider, "provider", "p", "", "Image provider: auto, gemini, openai, none (default from config)")
}

// --- publish command ---

var publishSkipImages bool

var publishCmd = &cobra.Command{
	Use:   "publish FILE",
	Short: "Publish a saved draft to WordPress",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openJournal()
		if db != nil {
			defer db.Close()
		}

		fmt.Printf("Publishing %s...\n", args[0])
		summary, err := newPipeline(db).PublishFile(cmd.Context(), args[0], publishSkipImages)
		if err != nil {
			return err
		}
		fmt.Println()
		printPublishSummary(summary)
		return nil
	},
}

func init() {
	publishCmd.Flags().BoolVar(&publishSkipImages, "skip-images", false, "Publish without uploading images")
}

// --- upload-images command ---

var uploadImagesCmd = &cobra.Command{
	Use:   "upload-images SLUG",
	Short: "Upload local images into an existing WordPress draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := openJournal()
		if db != nil {
			defer db.Close()
		}

		slug := output.Slugify(args[0])
		fmt.Printf("Uploading images for %s...\n", slug)
		rec, err := newPipeline(db).RecoverImages(cmd.Context(), slug)
		if err != nil {
			return err
		}
		fmt.Println()
		printRecovery(rec)
		return nil
	},
}
