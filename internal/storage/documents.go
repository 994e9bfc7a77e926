package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
	coreerrors "github.com/lueurxax/sred-discovery/internal/core/errors"
)

const documentColumns = `
	id, claim_id, filename, document_type, text_content, document_date,
	embedding::text, signals, entities, created_at`

// ListDocuments returns every document of a claim, oldest first.
func (db *DB) ListDocuments(ctx context.Context, claimID string) ([]domain.Document, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE claim_id = $1
		ORDER BY created_at, id
	`, claimID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return collectDocuments(rows)
}

// ListNewDocuments returns documents of a claim created after since that
// belong to no project yet, oldest first. A zero since covers the whole claim.
func (db *DB) ListNewDocuments(ctx context.Context, claimID string, since time.Time) ([]domain.Document, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents d
		WHERE d.claim_id = $1
		  AND d.created_at > $2
		  AND NOT EXISTS (SELECT 1 FROM project_documents pd WHERE pd.document_id = d.id)
		ORDER BY d.created_at, d.id
	`, claimID, since)
	if err != nil {
		return nil, fmt.Errorf("list new documents: %w", err)
	}

	return collectDocuments(rows)
}

func collectDocuments(rows pgx.Rows) ([]domain.Document, error) {
	defer rows.Close()

	var docs []domain.Document

	for rows.Next() {
		var (
			doc          domain.Document
			filename     pgtype.Text
			documentType pgtype.Text
			text         pgtype.Text
			date         pgtype.Date
			embedding    pgtype.Text
			signalsRaw   []byte
			entitiesRaw  []byte
		)

		if err := rows.Scan(
			&doc.ID, &doc.ClaimID, &filename, &documentType, &text, &date,
			&embedding, &signalsRaw, &entitiesRaw, &doc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		doc.Filename = fromText(filename)
		doc.DocumentType = fromText(documentType)
		doc.Text = fromText(text)
		doc.Date = fromDate(date)

		vec, err := parseVector(embedding)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}

		doc.Embedding = vec

		if len(signalsRaw) > 0 {
			doc.Signals = &domain.SignalProfile{}
			if err := json.Unmarshal(signalsRaw, doc.Signals); err != nil {
				return nil, fmt.Errorf("document %s signals: %w", doc.ID, err)
			}
		}

		if len(entitiesRaw) > 0 {
			doc.Entities = &domain.ExtractedEntities{}
			if err := json.Unmarshal(entitiesRaw, doc.Entities); err != nil {
				return nil, fmt.Errorf("document %s entities: %w", doc.ID, err)
			}
		}

		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}

	return docs, nil
}

// DocumentEmbedding averages the chunk embeddings of a document. It returns
// ErrNotFound when the document has no embedded chunks.
func (db *DB) DocumentEmbedding(ctx context.Context, documentID string) ([]float32, error) {
	var mean pgtype.Text

	err := db.Pool.QueryRow(ctx, `
		SELECT AVG(embedding)::text
		FROM document_chunks
		WHERE document_id = $1 AND embedding IS NOT NULL
	`, documentID).Scan(&mean)
	if err != nil {
		return nil, fmt.Errorf("document embedding: %w", err)
	}

	if !mean.Valid {
		return nil, fmt.Errorf("document %s embedding: %w", documentID, coreerrors.ErrNotFound)
	}

	return parseVector(mean)
}

// SaveDocumentAnalysis stores recomputed signals and entities for a document.
func (db *DB) SaveDocumentAnalysis(ctx context.Context, doc domain.Document) error {
	signalsJSON, err := marshalNullable(doc.Signals)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}

	entitiesJSON, err := marshalNullable(doc.Entities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}

	tag, err := db.Pool.Exec(ctx, `
		UPDATE documents
		SET signals = $2, entities = $3, analyzed_at = now()
		WHERE id = $1
	`, doc.ID, signalsJSON, entitiesJSON)
	if err != nil {
		return fmt.Errorf("save document analysis: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", doc.ID, coreerrors.ErrNotFound)
	}

	return nil
}

// marshalNullable encodes v as JSON, mapping nil pointers to SQL NULL.
func marshalNullable[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}

	return json.Marshal(v)
}

// LatestDocumentTime returns the newest created_at of a claim, or the zero
// time when the claim has no documents.
func (db *DB) LatestDocumentTime(ctx context.Context, claimID string) (time.Time, error) {
	var latest pgtype.Timestamptz

	err := db.Pool.QueryRow(ctx, `
		SELECT MAX(created_at) FROM documents WHERE claim_id = $1
	`, claimID).Scan(&latest)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, fmt.Errorf("latest document time: %w", err)
	}

	if !latest.Valid {
		return time.Time{}, nil
	}

	return latest.Time, nil
}
