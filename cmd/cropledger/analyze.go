package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/cropledger/internal/analytics"
	"github.com/mamadbah2/cropledger/internal/config"
	"github.com/mamadbah2/cropledger/internal/domain/models"
	"github.com/mamadbah2/cropledger/internal/importer"
	reportingsvc "github.com/mamadbah2/cropledger/internal/service/reporting"
	"github.com/mamadbah2/cropledger/pkg/logger"
)

type analyzeFlags struct {
	envFile         string
	productionPath  string
	productionSheet string
	costsPath       string
	costsSheet      string
	from            string
	to              string
	locations       []string
	crops           []string
	strategy        string
	groupBy         string
	sort            string
	text            bool
	exportPath      string
	logLevel        string
}

func newAnalyzeCmd() *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Build an analytics report from xlsx workbooks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAnalyze(cmd.Context(), f, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.envFile, "env", "", "optional .env file with analytics settings")
	flags.StringVar(&f.productionPath, "production", "", "harvest workbook (xlsx)")
	flags.StringVar(&f.productionSheet, "production-sheet", "", "harvest sheet name (default: first sheet)")
	flags.StringVar(&f.costsPath, "costs", "", "input-cost workbook (xlsx)")
	flags.StringVar(&f.costsSheet, "costs-sheet", "", "input-cost sheet name (default: first sheet)")
	flags.StringVar(&f.from, "from", "", "first day included (YYYY-MM-DD)")
	flags.StringVar(&f.to, "to", "", "last day included (YYYY-MM-DD)")
	flags.StringSliceVar(&f.locations, "location", nil, "locations to include")
	flags.StringSliceVar(&f.crops, "crop", nil, "crops to include")
	flags.StringVar(&f.strategy, "strategy", "auto", "forecast strategy: auto, regression or simple")
	flags.StringVar(&f.groupBy, "group-by", "", "extra grouping: location, crop, week or month")
	flags.StringVar(&f.sort, "sort", "", "group ordering: key, total_desc, total_asc or pct_grade2_desc")
	flags.BoolVar(&f.text, "text", false, "print the text summary instead of JSON")
	flags.StringVar(&f.exportPath, "export", "", "write the filtered harvest records to this xlsx file")
	flags.StringVar(&f.logLevel, "log-level", "warn", "log level")
	_ = cmd.MarkFlagRequired("production")

	return cmd
}

// analysisOutput is the JSON document printed by analyze.
type analysisOutput struct {
	Report    models.AnalyticsReport `json:"report"`
	Aggregate *models.KPISet         `json:"aggregate,omitempty"`
}

func runAnalyze(ctx context.Context, f *analyzeFlags, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(f.envFile)
	if err != nil {
		return err
	}
	log, err := logger.New(f.logLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	scope, err := parseScope(f)
	if err != nil {
		return err
	}
	strategy, err := analytics.ParseStrategy(f.strategy)
	if err != nil {
		return err
	}
	spec, err := parseGroupSpec(f)
	if err != nil {
		return err
	}

	src, err := loadWorkbooks(f)
	if err != nil {
		return err
	}
	log.Debug("workbooks loaded",
		zap.Int("production_records", len(src.production)),
		zap.Int("cost_records", len(src.costs)))

	svc := reportingsvc.NewService(src, nil, nil, cfg.AnalyticsOptions(), cfg.Analytics.FixedCosts, log.Named("svc.reporting"))
	report, err := svc.BuildReport(ctx, reportingsvc.Request{Scope: scope, Strategy: strategy})
	if err != nil {
		return err
	}

	if f.exportPath != "" {
		if err := exportProduction(f.exportPath, analytics.Filter(src.production, scope)); err != nil {
			return err
		}
	}

	if f.text {
		_, err := fmt.Fprintln(out, report.Summary)
		return err
	}

	doc := analysisOutput{Report: report}
	if spec.By != analytics.GroupNone {
		kpis := analytics.Aggregate(analytics.Filter(src.production, scope), spec)
		doc.Aggregate = &kpis
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

func parseScope(f *analyzeFlags) (models.Scope, error) {
	scope := models.Scope{Locations: f.locations, Crops: f.crops}
	var err error
	if f.from != "" {
		if scope.From, err = time.Parse("2006-01-02", f.from); err != nil {
			return scope, fmt.Errorf("--from: %w", err)
		}
	}
	if f.to != "" {
		if scope.To, err = time.Parse("2006-01-02", f.to); err != nil {
			return scope, fmt.Errorf("--to: %w", err)
		}
	}
	if !scope.From.IsZero() && !scope.To.IsZero() && scope.To.Before(scope.From) {
		return scope, fmt.Errorf("--to must not be before --from")
	}
	return scope, nil
}

func parseGroupSpec(f *analyzeFlags) (analytics.GroupSpec, error) {
	by, err := analytics.ParseGroupBy(f.groupBy)
	if err != nil {
		return analytics.GroupSpec{}, err
	}
	order, err := analytics.ParseSortOrder(f.sort)
	if err != nil {
		return analytics.GroupSpec{}, err
	}
	return analytics.GroupSpec{By: by, Sort: order}, nil
}

func loadWorkbooks(f *analyzeFlags) (*workbookSource, error) {
	table, err := importer.ReadFile(f.productionPath, f.productionSheet)
	if err != nil {
		return nil, fmt.Errorf("read production workbook: %w", err)
	}
	src := &workbookSource{production: analytics.ProductionRecords(table)}

	if f.costsPath != "" {
		table, err := importer.ReadFile(f.costsPath, f.costsSheet)
		if err != nil {
			return nil, fmt.Errorf("read costs workbook: %w", err)
		}
		src.costs = analytics.CostRecords(table)
	}
	return src, nil
}

func exportProduction(path string, records []models.ProductionRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := importer.WriteProduction(file, records); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// workbookSource serves records read from workbooks, scoped in memory.
type workbookSource struct {
	production []models.ProductionRecord
	costs      []models.InputCostRecord
}

func (s *workbookSource) ListProduction(_ context.Context, scope models.Scope) ([]models.ProductionRecord, error) {
	return analytics.Filter(s.production, scope), nil
}

func (s *workbookSource) ListCosts(_ context.Context, scope models.Scope) ([]models.InputCostRecord, error) {
	return analytics.FilterCosts(s.costs, scope), nil
}
