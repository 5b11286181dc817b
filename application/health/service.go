package health

import (
	"context"
)

type Service struct {
	ticketsRepo *Repository
	pedidosRepo *Repository
}

func NewService(ticketsRepo *Repository, pedidosRepo *Repository) *Service {
	return &Service{
		ticketsRepo: ticketsRepo,
		pedidosRepo: pedidosRepo,
	}
}

func (s *Service) CheckHealth(ctx context.Context) map[string]string {
	result := make(map[string]string)

	if err := s.ticketsRepo.Ping(ctx); err != nil {
		result["tickets_sheet"] = "error"
	} else {
		result["tickets_sheet"] = "ok"
	}

	if err := s.pedidosRepo.Ping(ctx); err != nil {
		result["pedidos_sheet"] = "error"
	} else {
		result["pedidos_sheet"] = "ok"
	}

	return result
}
