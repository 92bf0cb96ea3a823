package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"reportai-backend/internal/analysis"
	"reportai-backend/internal/bootstrap"
	"reportai-backend/internal/dataset"
	"reportai-backend/internal/llm"
	"reportai-backend/internal/shared/config"
	localstore "reportai-backend/internal/shared/storage/object/local"
	"reportai-backend/report/model"
	"reportai-backend/report/render"
	"reportai-backend/report/service"
)

const formatAll = "all"

type renderOptions struct {
	input        string
	outDir       string
	format       string
	title        string
	date         string
	company      string
	author       string
	templateType string
	language     string
	useLLM       bool
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a report from a CSV or XLSX file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			paths, err := runRender(cmd.Context(), opts)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.input, "input", "i", "", "dataset file (.csv or .xlsx)")
	f.StringVarP(&opts.outDir, "out", "o", "./out", "output directory")
	f.StringVarP(&opts.format, "format", "f", "pdf", "pdf, word, excel or all")
	f.StringVar(&opts.title, "title", "", "report title")
	f.StringVar(&opts.date, "date", "", "report date (default today)")
	f.StringVar(&opts.company, "company", "", "company name")
	f.StringVar(&opts.author, "author", "", "report author")
	f.StringVar(&opts.templateType, "template", model.DefaultTemplateType, "report template type")
	f.StringVar(&opts.language, "language", "en", "analysis language (en or fi)")
	f.BoolVar(&opts.useLLM, "llm", false, "ask the configured LLM provider for the analysis")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func runRender(ctx context.Context, opts renderOptions) ([]string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	formats, err := selectFormats(opts.format)
	if err != nil {
		return nil, err
	}

	parsed, err := loadDataset(opts.input)
	if err != nil {
		return nil, err
	}

	lang, err := model.ParseLanguage(opts.language)
	if err != nil {
		return nil, err
	}
	var client llm.Client
	if opts.useLLM {
		client, err = bootstrap.NewLLMClient(config.Load())
		if err != nil {
			return nil, err
		}
	}
	result := analysis.NewAnalyzer(client).Analyze(ctx, analysis.Summarize(parsed.Dataset), opts.templateType, lang)

	date := strings.TrimSpace(opts.date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}
	m, err := model.NewReportModel(model.ReportInput{
		Title:        opts.title,
		Date:         date,
		Company:      opts.company,
		Author:       opts.author,
		TemplateType: opts.templateType,
		Language:     string(lang),
		Analysis:     result,
	})
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return nil, err
	}
	gen := service.NewGenerator(localstore.New(opts.outDir), ".")
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		art, err := gen.Generate(ctx, parsed.Dataset, m, string(format))
		if err != nil {
			return paths, err
		}
		paths = append(paths, filepath.Join(opts.outDir, filepath.FromSlash(art.StorageKey)))
	}
	return paths, nil
}

func selectFormats(token string) ([]render.Format, error) {
	if strings.EqualFold(strings.TrimSpace(token), formatAll) {
		return render.Formats, nil
	}
	format, err := render.ParseFormat(token)
	if err != nil {
		return nil, err
	}
	return []render.Format{format}, nil
}

func loadDataset(path string) (dataset.Parsed, error) {
	file, err := os.Open(path)
	if err != nil {
		return dataset.Parsed{}, err
	}
	defer file.Close()
	parsed, err := dataset.Parse(filepath.Base(path), file)
	if err != nil {
		return dataset.Parsed{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return parsed, nil
}
