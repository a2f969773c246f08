package geo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Directory memuat kandidat store + alamat aktif dari DB untuk locator.
type Directory struct{ DB *pgxpool.Pool }

func (d *Directory) ListCandidates(ctx context.Context) ([]Store, error) {
	rows, err := d.DB.Query(ctx, `
		SELECT s.id, s.name, a.id, a.lat, a.lng
		FROM stores s
		JOIN store_addresses a ON a.store_id = s.id AND a.active
		ORDER BY s.id, a.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Store
	byID := map[string]int{}
	for rows.Next() {
		var storeID, name, addrID string
		var lat, lng float64
		if err := rows.Scan(&storeID, &name, &addrID, &lat, &lng); err != nil {
			return nil, err
		}
		idx, ok := byID[storeID]
		if !ok {
			out = append(out, Store{ID: storeID, Name: name})
			idx = len(out) - 1
			byID[storeID] = idx
		}
		out[idx].Addresses = append(out[idx].Addresses, Address{ID: addrID, Lat: lat, Lng: lng, Active: true})
	}
	return out, rows.Err()
}
