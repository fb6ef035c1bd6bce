package services

import (
	"context"
	"fmt"

	"mealbook/internal/core"
	"mealbook/internal/rowstore"
)

// DirectoryService serves the small read-only tables: notices and companies.
type DirectoryService struct {
	store rowstore.Store
}

func NewDirectoryService(store rowstore.Store) *DirectoryService {
	return &DirectoryService{store: store}
}

// Notices lists one company's notices in board order.
func (s *DirectoryService) Notices(ctx context.Context, companyName string) ([]rowstore.Notice, error) {
	rows, err := s.store.Get(ctx, rowstore.TableNotices)
	if err != nil {
		return nil, fmt.Errorf("%w: get notices: %v", core.ErrStore, err)
	}
	var out []rowstore.Notice
	for _, row := range rows {
		if n, ok := rowstore.DecodeNotice(row); ok && n.CompanyName == companyName {
			out = append(out, n)
		}
	}
	return out, nil
}

// Companies lists every registered company name, for the signup form.
func (s *DirectoryService) Companies(ctx context.Context) ([]string, error) {
	rows, err := s.store.Get(ctx, rowstore.TableCompanies)
	if err != nil {
		return nil, fmt.Errorf("%w: get companies: %v", core.ErrStore, err)
	}
	var out []string
	for _, row := range rows {
		if name, ok := rowstore.DecodeCompany(row); ok {
			out = append(out, name)
		}
	}
	return out, nil
}
