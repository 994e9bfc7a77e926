package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/lueurxax/sred-discovery/internal/core/domain"
)

// ListExistingProjects returns approved and discovered projects of a claim
// with up to maxMembers member embeddings each, most recently associated
// first, and their stored narrative.
func (db *DB) ListExistingProjects(ctx context.Context, claimID string, maxMembers int) ([]domain.ExistingProject, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, status, narrative_uncertainty, narrative_systematic, narrative_advancement
		FROM projects
		WHERE claim_id = $1 AND status IN ($2, $3)
		ORDER BY id
	`, claimID, ProjectStatusApproved, ProjectStatusDiscovered)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var (
		projects []domain.ExistingProject
		index    = make(map[string]int)
	)

	for rows.Next() {
		var p domain.ExistingProject

		var uncertainty, systematic, advancement pgtype.Text

		if err := rows.Scan(&p.ID, &p.Name, &p.Status, &uncertainty, &systematic, &advancement); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}

		narrative := &domain.Narrative{
			Uncertainty: fromText(uncertainty),
			Systematic:  fromText(systematic),
			Advancement: fromText(advancement),
		}
		if !narrative.IsEmpty() {
			p.Narrative = narrative
		}

		index[p.ID] = len(projects)
		projects = append(projects, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	if len(projects) == 0 {
		return nil, nil
	}

	if err := db.loadMemberEmbeddings(ctx, claimID, maxMembers, projects, index); err != nil {
		return nil, err
	}

	return projects, nil
}

func (db *DB) loadMemberEmbeddings(ctx context.Context, claimID string, maxMembers int, projects []domain.ExistingProject, index map[string]int) error {
	rows, err := db.Pool.Query(ctx, `
		SELECT project_id, embedding::text
		FROM (
			SELECT pd.project_id, d.embedding,
				ROW_NUMBER() OVER (PARTITION BY pd.project_id ORDER BY pd.created_at DESC, d.id) AS rn
			FROM project_documents pd
			JOIN documents d ON d.id = pd.document_id
			JOIN projects p ON p.id = pd.project_id
			WHERE p.claim_id = $1 AND d.embedding IS NOT NULL
		) ranked
		WHERE rn <= $2
		ORDER BY project_id, rn
	`, claimID, maxMembers)
	if err != nil {
		return fmt.Errorf("list member embeddings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			projectID string
			raw       pgtype.Text
		)

		if err := rows.Scan(&projectID, &raw); err != nil {
			return fmt.Errorf("scan member embedding: %w", err)
		}

		i, ok := index[projectID]
		if !ok {
			continue
		}

		vec, err := parseVector(raw)
		if err != nil {
			return fmt.Errorf("project %s: %w", projectID, err)
		}

		if len(vec) > 0 {
			projects[i].MemberEmbeddings = append(projects[i].MemberEmbeddings, vec)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate member embeddings: %w", err)
	}

	return nil
}

// AddAssociation links a document to a project. It reports false when the
// pair already exists.
func (db *DB) AddAssociation(ctx context.Context, a domain.Association) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `
		INSERT INTO project_documents (project_id, document_id, similarity, confidence, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (project_id, document_id) DO NOTHING
	`, a.ProjectID, a.DocumentID, a.Similarity, string(a.Confidence), time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("add association: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
