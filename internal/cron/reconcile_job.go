package cron

import (
	"context"
	"fmt"

	"github.com/terangalabs/kadoo-backend/pkg/logger"
)

// paymentReconciler is the slice of the payments service the sweep needs.
type paymentReconciler interface {
	ReconcilePayments(ctx context.Context) (int, error)
}

// ReconcileJobParams configure the pending payment sweep.
type ReconcileJobParams struct {
	Logger   *logger.Logger
	Payments paymentReconciler
}

// NewReconcileJob builds the pass that resolves pending donations whose
// webhook never arrived, by asking the payment provider directly.
func NewReconcileJob(params ReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Payments == nil {
		return nil, fmt.Errorf("payments service required")
	}
	return &reconcileJob{logg: params.Logger, payments: params.Payments}, nil
}

type reconcileJob struct {
	logg     *logger.Logger
	payments paymentReconciler
}

func (j *reconcileJob) Name() string { return "payment-reconcile" }

func (j *reconcileJob) Run(ctx context.Context) error {
	resolved, err := j.payments.ReconcilePayments(ctx)
	j.logg.Info(j.logg.WithField(ctx, "count", resolved), "payment reconcile pass complete")
	return err
}
