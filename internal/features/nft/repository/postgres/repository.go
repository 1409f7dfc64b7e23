package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"nft-marketplace-backend/internal/features/nft/models"
	"nft-marketplace-backend/internal/features/nft/repository"
)

const nftColumns = `id::text, name, description, price::text, image_url, creator, owner, created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.NFTRepository {
	return &postgresRepository{pool: pool}
}

func scanNFT(row pgx.Row) (*models.NFT, error) {
	var nft models.NFT
	err := row.Scan(
		&nft.ID, &nft.Name, &nft.Description, &nft.Price, &nft.ImageURL,
		&nft.Creator, &nft.Owner, &nft.CreatedAt, &nft.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	// NUMERIC(38,18) comes back zero padded
	if d, err := decimal.NewFromString(nft.Price); err == nil {
		nft.Price = d.String()
	}
	return &nft, nil
}

func (r *postgresRepository) Create(ctx context.Context, nft *models.NFT) error {
	const query = `
		INSERT INTO nfts (id, name, description, price, image_url, creator, owner, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		nft.ID, nft.Name, nft.Description, nft.Price, nft.ImageURL,
		nft.Creator, nft.Owner, nft.CreatedAt, nft.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert nft: %w", err)
	}
	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id string) (*models.NFT, error) {
	query := `SELECT ` + nftColumns + ` FROM nfts WHERE id::text = $1`

	nft, err := scanNFT(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNFTNotFound
		}
		return nil, fmt.Errorf("failed to get nft: %w", err)
	}
	return nft, nil
}

func (r *postgresRepository) ListByAddress(ctx context.Context, address string) ([]*models.NFT, error) {
	query := `SELECT ` + nftColumns + ` FROM nfts WHERE creator = $1 OR owner = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("failed to list nfts: %w", err)
	}
	defer rows.Close()

	nfts := make([]*models.NFT, 0)
	for rows.Next() {
		nft, err := scanNFT(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan nft: %w", err)
		}
		nfts = append(nfts, nft)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nfts, nil
}

func (r *postgresRepository) TransferOwnership(ctx context.Context, id, newOwner, txHash string, at time.Time) (*models.NFT, error) {
	const recordPurchase = `
		INSERT INTO nft_purchases (tx_hash, nft_id, buyer, created_at)
		VALUES ($1, $2::uuid, $3, $4)
		ON CONFLICT (tx_hash) DO NOTHING
	`
	query := `
		UPDATE nfts SET owner = $2, updated_at = $3
		WHERE id::text = $1 AND owner <> $2
		RETURNING ` + nftColumns

	var nft *models.NFT
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		nft, err = scanNFT(tx.QueryRow(ctx, query, id, newOwner, at))
		if err != nil {
			return err
		}
		if txHash == "" {
			return nil
		}
		tag, err := tx.Exec(ctx, recordPurchase, txHash, nft.ID, newOwner, at)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return repository.ErrTxHashUsed
		}
		return nil
	})
	if err == nil {
		return nft, nil
	}
	if errors.Is(err, repository.ErrTxHashUsed) {
		return nil, err
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to transfer nft: %w", err)
	}

	// nothing updated: either missing or already owned by newOwner
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, repository.ErrAlreadyOwner
}
