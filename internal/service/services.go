// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data.
package service

import (
	"github.com/deppfellow/course-referral/internal/lib/job"
	"github.com/deppfellow/course-referral/internal/repository"
	"github.com/deppfellow/course-referral/internal/server"
)

type Services struct {
	Referral *ReferralService
	Job      *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	notifier, err := NewNotifier(s)
	if err != nil {
		return nil, err
	}

	return &Services{
		Referral: NewReferralService(s.Logger, repos.Referral, notifier, s.Events),
		Job:      s.Job,
	}, nil
}
