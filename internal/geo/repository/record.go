package repository

import (
	"database/sql"
	"encoding/json"

	"geoatlas/internal/common/db"
	"geoatlas/internal/geo/domain"
)

// entityRecord is the stored row shape shared by all four tables.
type entityRecord struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ParentID  *int64 `json:"parent_id,omitempty"`
	CountryID *int64 `json:"country_id,omitempty"`
}

func scanRecord(scanner db.Scanner) (*entityRecord, error) {
	var (
		rec       entityRecord
		parentID  sql.NullInt64
		countryID sql.NullInt64
	)
	if err := scanner.Scan(&rec.ID, &rec.Name, &parentID, &countryID); err != nil {
		return nil, err
	}
	rec.ParentID = nullableID(parentID)
	rec.CountryID = nullableID(countryID)
	return &rec, nil
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func marshalRecord(rec *entityRecord) string {
	data, err := json.Marshal(rec)
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalRecord(data string) (*entityRecord, error) {
	var rec entityRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func toContinent(rec *entityRecord) *domain.Continent {
	if rec == nil {
		return nil
	}
	return domain.RestoreContinent(rec.ID, rec.Name)
}

func toCountry(rec *entityRecord) *domain.Country {
	if rec == nil {
		return nil
	}
	return domain.RestoreCountry(rec.ID, rec.Name, rec.ParentID)
}

func toProvince(rec *entityRecord) *domain.Province {
	if rec == nil {
		return nil
	}
	return domain.RestoreProvince(rec.ID, rec.Name, rec.ParentID)
}

func toCity(rec *entityRecord) *domain.City {
	if rec == nil {
		return nil
	}
	return domain.RestoreCity(rec.ID, rec.Name, rec.ParentID, rec.CountryID)
}
