package initializer

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"kernel-module-detective/internal/db"
	"kernel-module-detective/internal/generator"
	"kernel-module-detective/internal/record"
)

// CreateDataset generates a dataset from params, rebuilds the schema of database and stores every
// row. Nothing is written when generation fails, and a failed save leaves the tables empty.
func CreateDataset(ctx context.Context, database *db.Database, params generator.Params) (generator.Summary, error) {
	gen, err := generator.NewGenerator(params)
	if err != nil {
		return generator.Summary{}, err
	}

	dataset, err := gen.Generate(ctx)
	if err != nil {
		return generator.Summary{}, errors.WithMessage(err, "error generating dataset")
	}
	summary := dataset.Summarize()
	logger := log.WithFields(log.Fields{"run_id": summary.RunID, "seed": summary.Seed})
	logger.WithField("sessions", len(dataset.Sessions)).Info("dataset generated")

	if err := database.Reset(ctx); err != nil {
		return generator.Summary{}, errors.WithMessage(err, "error resetting schema")
	}

	repo := record.NewRepository(database.Goqu())
	if err := repo.Save(ctx, dataset.Tables()); err != nil {
		return generator.Summary{}, errors.WithMessage(err, "error saving dataset")
	}
	fields := log.Fields{"driver": database.Driver()}
	for table, n := range summary.Totals {
		fields[table] = n
	}
	logger.WithFields(fields).Info("dataset stored")

	return summary, nil
}
