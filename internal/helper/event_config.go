package helper

import (
	"database/sql"

	"backend-evoting/internal/config"
	"backend-evoting/internal/models"
	"backend-evoting/internal/voting"
)

type querier interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

// LoadEventConfig baca semua baris event_config. q bisa *sql.DB atau *sql.Tx.
func LoadEventConfig(q querier) (models.EventConfig, error) {
	rows, err := q.Query("SELECT config_key, config_value FROM event_config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cfg := models.EventConfig{}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		cfg[key] = value
	}

	return cfg, rows.Err()
}

// CurrentEligibility - evaluasi jadwal voting terhadap waktu lokal acara.
func CurrentEligibility() voting.Eligibility {
	cfg, err := LoadEventConfig(config.DB)
	if err != nil {
		return voting.ErrorEligibility(err)
	}
	return voting.Evaluate(cfg, config.LocalNow())
}
