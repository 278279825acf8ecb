// Package overdue runs the scheduled sweep over open loans past their due
// date and hands each one to the notifier.
package overdue

import (
	"context"
	"log"

	"libraryapi/internal/circulation"

	"github.com/robfig/cron/v3"
)

// Lister is the slice of the circulation service the scanner needs.
type Lister interface {
	ListOverdue(ctx context.Context) ([]circulation.OverdueLoan, error)
}

type Scanner struct {
	svc      Lister
	notifier circulation.Notifier
	cron     *cron.Cron
	spec     string
}

// NewScanner schedules Run with the given cron spec (e.g. "0 0 * * *" for
// midnight daily).
func NewScanner(svc Lister, notifier circulation.Notifier, spec string) *Scanner {
	return &Scanner{svc: svc, notifier: notifier, cron: cron.New(), spec: spec}
}

func (s *Scanner) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.Run(context.Background()); err != nil {
			log.Printf("overdue scan failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scanner) Stop() {
	<-s.cron.Stop().Done()
}

// Run performs one sweep. It is exported so the sweep can be triggered
// directly, outside the schedule.
func (s *Scanner) Run(ctx context.Context) error {
	loans, err := s.svc.ListOverdue(ctx)
	if err != nil {
		return err
	}
	for _, loan := range loans {
		s.notifier.RecordOverdue(ctx, loan.Record, loan.AccruedFine)
	}
	if len(loans) > 0 {
		log.Printf("overdue scan found %d open overdue loans", len(loans))
	}
	return nil
}
