package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/adrsyn/ballotbox/internal/core/domain"
	"github.com/adrsyn/ballotbox/internal/core/ports"
)

type store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) ports.BackingStore {
	return &store{
		db: db,
	}
}

func (s *store) ListVoters(ctx context.Context) ([]domain.Voter, error) {
	query := `SELECT token, name, class, campus FROM voters`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list voters: %w", err)
	}
	defer rows.Close()

	var voters []domain.Voter
	for rows.Next() {
		var v domain.Voter
		if err := rows.Scan(&v.Token, &v.Name, &v.Class, &v.Campus); err != nil {
			return nil, fmt.Errorf("failed to scan voter: %w", err)
		}
		voters = append(voters, v)
	}
	return voters, rows.Err()
}

func (s *store) ListAdmins(ctx context.Context) ([]domain.Admin, error) {
	query := `SELECT id, password, COALESCE(session_token, '') FROM admins`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var admins []domain.Admin
	for rows.Next() {
		var a domain.Admin
		if err := rows.Scan(&a.ID, &a.Password, &a.SessionToken); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (s *store) ListCandidates(ctx context.Context) ([]domain.Candidate, error) {
	query := `SELECT name, campus FROM candidates`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(&c.Name, &c.Campus); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

func (s *store) ListVotes(ctx context.Context) ([]domain.Vote, error) {
	query := `SELECT voter_name, candidate_name FROM votes`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		var v domain.Vote
		if err := rows.Scan(&v.VoterName, &v.CandidateName); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

func (s *store) InsertVote(ctx context.Context, vote domain.Vote) error {
	query := `INSERT INTO votes (voter_name, candidate_name) VALUES ($1, $2)`
	_, err := s.db.ExecContext(ctx, query, vote.VoterName, vote.CandidateName)
	if err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

func (s *store) DeleteVotesByVoter(ctx context.Context, voterName string) error {
	query := `DELETE FROM votes WHERE voter_name = $1`
	_, err := s.db.ExecContext(ctx, query, voterName)
	if err != nil {
		return fmt.Errorf("failed to delete votes: %w", err)
	}
	return nil
}

func (s *store) SetAdminSessionToken(ctx context.Context, adminID, token string) error {
	query := `UPDATE admins SET session_token = $1 WHERE id = $2`
	_, err := s.db.ExecContext(ctx, query, token, adminID)
	if err != nil {
		return fmt.Errorf("failed to set admin session token: %w", err)
	}
	return nil
}
