package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/rentledger/rentledger/internal/domain"
)

const apartmentColumns = `id, unit_number, address, base_rent,
	electricity_rate, water_rate, gas_rate, internet_rate, trash_rate, parking_rate,
	created_at`

type ApartmentRepository struct {
	db *sql.DB
}

func NewApartmentRepository(db *sql.DB) *ApartmentRepository {
	return &ApartmentRepository{db: db}
}

func (r *ApartmentRepository) Create(ctx context.Context, a *domain.Apartment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO apartments (
			id, unit_number, address, base_rent,
			electricity_rate, water_rate, gas_rate, internet_rate, trash_rate, parking_rate,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.UnitNumber, a.Address, a.BaseRent,
		a.ElectricityRate, a.WaterRate, a.GasRate, a.InternetRate, a.TrashRate, a.ParkingRate,
		a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *ApartmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Apartment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+apartmentColumns+` FROM apartments WHERE id = $1`, id,
	)
	a, err := scanApartment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: apartment %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return a, nil
}

func scanApartment(s scanner) (*domain.Apartment, error) {
	var a domain.Apartment
	err := s.Scan(
		&a.ID, &a.UnitNumber, &a.Address, &a.BaseRent,
		&a.ElectricityRate, &a.WaterRate, &a.GasRate, &a.InternetRate, &a.TrashRate, &a.ParkingRate,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
