package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"goldloan-engine/internal/domain/golditem"
)

type GoldItemRequest struct {
	CustomerID     int64  `json:"customerId"`
	ItemType       string `json:"itemType"`
	WeightInGrams  string `json:"weightInGrams"`
	Purity         string `json:"purity"`
	Description    string `json:"description,omitempty"`
	EstimatedValue string `json:"estimatedValue"`
	ImageURL       string `json:"imageUrl,omitempty"`
}

func (r *GoldItemRequest) Validate() error {
	if r.CustomerID <= 0 {
		return fmt.Errorf("customerId must be a positive number")
	}
	if strings.TrimSpace(r.ItemType) == "" {
		return fmt.Errorf("itemType cannot be empty")
	}
	if _, err := decimal.NewFromString(r.WeightInGrams); err != nil {
		return fmt.Errorf("invalid weightInGrams: %w", err)
	}
	if _, err := decimal.NewFromString(r.EstimatedValue); err != nil {
		return fmt.Errorf("invalid estimatedValue: %w", err)
	}
	return nil
}

func (r *GoldItemRequest) ToDomain() *golditem.GoldItem {
	weight, _ := decimal.NewFromString(r.WeightInGrams)
	value, _ := decimal.NewFromString(r.EstimatedValue)
	return &golditem.GoldItem{
		CustomerID:     r.CustomerID,
		ItemType:       r.ItemType,
		WeightInGrams:  weight,
		Purity:         r.Purity,
		Description:    r.Description,
		EstimatedValue: value,
		ImageURL:       r.ImageURL,
	}
}

type GoldItemResponse struct {
	ID             int64     `json:"id"`
	CustomerID     int64     `json:"customerId"`
	ItemType       string    `json:"itemType"`
	WeightInGrams  string    `json:"weightInGrams"`
	Purity         string    `json:"purity"`
	Description    string    `json:"description"`
	EstimatedValue string    `json:"estimatedValue"`
	Status         string    `json:"status"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func NewGoldItemResponse(item *golditem.GoldItem) GoldItemResponse {
	return GoldItemResponse{
		ID:             item.ID,
		CustomerID:     item.CustomerID,
		ItemType:       item.ItemType,
		WeightInGrams:  item.WeightInGrams.String(),
		Purity:         item.Purity,
		Description:    item.Description,
		EstimatedValue: item.EstimatedValue.StringFixed(2),
		Status:         string(item.Status),
		ImageURL:       item.ImageURL,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

func NewGoldItemListResponse(items []*golditem.GoldItem) []GoldItemResponse {
	out := make([]GoldItemResponse, len(items))
	for i, item := range items {
		out[i] = NewGoldItemResponse(item)
	}
	return out
}
