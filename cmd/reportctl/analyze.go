package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"reportai-backend/internal/analysis"
	"reportai-backend/internal/bootstrap"
	"reportai-backend/internal/llm"
	"reportai-backend/internal/shared/config"
	"reportai-backend/report/model"
)

type analyzeOptions struct {
	input        string
	templateType string
	language     string
	raw          bool
	outPath      string
}

func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOptions{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Print the analysis generated for a dataset",
		Long: "Summarizes the dataset and asks the configured LLM provider for the report narrative.\n" +
			"Without --raw, provider failures print the built-in fallback text instead.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := bootstrap.NewLLMClient(config.Load())
			if err != nil {
				return err
			}
			return runAnalyze(cmd.Context(), client, opts, cmd.OutOrStdout())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "dataset file (.csv or .xlsx)")
	f.StringVar(&opts.templateType, "template", model.DefaultTemplateType, "report template type")
	f.StringVar(&opts.language, "language", "en", "analysis language (en or fi)")
	f.BoolVar(&opts.raw, "raw", false, "print the provider response as returned and fail instead of falling back")
	f.StringVar(&opts.outPath, "out", "", "also write the JSON to this path")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

func runAnalyze(ctx context.Context, client llm.Client, opts analyzeOptions, w io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	lang, err := model.ParseLanguage(opts.language)
	if err != nil {
		return err
	}
	parsed, err := loadDataset(opts.input)
	if err != nil {
		return err
	}
	summary := analysis.Summarize(parsed.Dataset)

	var out []byte
	if opts.raw {
		payload, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		raw, err := client.AnalyzeDataset(ctx, llm.AnalyzeInput{
			Summary:      payload,
			TemplateType: opts.templateType,
			Language:     string(lang),
		})
		if err != nil {
			return fmt.Errorf("llm analyze: %w", err)
		}
		if _, err := analysis.ParseResult(raw); err != nil {
			return fmt.Errorf("invalid analysis: %w", err)
		}
		out = raw
	} else {
		result := analysis.NewAnalyzer(client).Analyze(ctx, summary, opts.templateType, lang)
		if out, err = json.Marshal(result); err != nil {
			return err
		}
	}

	pretty, err := prettyJSON(out)
	if err != nil {
		return fmt.Errorf("format json: %w", err)
	}
	if opts.outPath != "" {
		if err := os.WriteFile(opts.outPath, pretty, 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	_, err = w.Write(pretty)
	return err
}

func prettyJSON(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
