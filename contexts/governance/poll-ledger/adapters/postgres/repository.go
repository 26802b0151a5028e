package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/entities"
	domainerrors "github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/domain/errors"
	"github.com/The5wapnanil/Chainpoll-risein/contexts/governance/poll-ledger/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

// Repository is the durable ledger over postgres. Mutations run in a single
// transaction with the poll row locked FOR UPDATE, so per-poll serialization
// matches the memory adapter's critical-section discipline.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the ledger schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&pollModel{},
		&optionModel{},
		&voterModel{},
		&outboxModel{},
	)
}

func (r *Repository) CreatePoll(ctx context.Context, poll entities.Poll) (uint64, error) {
	var pollID uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := pollRowFromEntity(poll)
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		options := optionRowsFromEntity(row.ID, poll.Options)
		if err := tx.Create(&options).Error; err != nil {
			return err
		}
		pollID = row.ID
		return nil
	})
	if err != nil {
		return 0, r.logError("poll_repo_create_poll_failed", err, "creator", poll.Creator)
	}
	return pollID, nil
}

func (r *Repository) GetPoll(ctx context.Context, pollID uint64) (entities.Poll, error) {
	var out entities.Poll
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		poll, err := loadPoll(tx, pollID, false)
		if err != nil {
			return err
		}
		out = poll
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return entities.Poll{}, err
		}
		return entities.Poll{}, r.logError("poll_repo_get_poll_failed", err, "poll_id", pollID)
	}
	return out, nil
}

func (r *Repository) CastVote(ctx context.Context, pollID uint64, optionIndex int, voter string) (entities.Poll, error) {
	var out entities.Poll
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		poll, err := loadPoll(tx, pollID, true)
		if err != nil {
			return err
		}
		// Entity preconditions run against the locked snapshot; the row
		// updates below mirror the accepted transition.
		if err := poll.CastVote(voter, optionIndex); err != nil {
			return err
		}

		voterRow := voterModel{
			PollID:  pollID,
			VoterID: voter,
			VotedAt: time.Now().UTC(),
		}
		if err := tx.Create(&voterRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrAlreadyVoted
			}
			return err
		}
		update := tx.Model(&optionModel{}).
			Where("poll_id = ?", pollID).
			Where("option_index = ?", optionIndex).
			Update("vote_count", gorm.Expr("vote_count + 1"))
		if update.Error != nil {
			return update.Error
		}
		if update.RowsAffected == 0 {
			return domainerrors.ErrInvalidOptionIndex
		}
		out = poll
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return entities.Poll{}, err
		}
		return entities.Poll{}, r.logError("poll_repo_cast_vote_failed", err,
			"poll_id", pollID,
			"option_index", optionIndex,
		)
	}
	return out, nil
}

func (r *Repository) ClosePoll(ctx context.Context, pollID uint64, caller string) (entities.Poll, error) {
	var out entities.Poll
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		poll, err := loadPoll(tx, pollID, true)
		if err != nil {
			return err
		}
		if err := poll.Close(caller); err != nil {
			return err
		}
		if err := tx.Model(&pollModel{}).
			Where("id = ?", pollID).
			Update("active", false).Error; err != nil {
			return err
		}
		out = poll
		return nil
	})
	if err != nil {
		if isDomainError(err) {
			return entities.Poll{}, err
		}
		return entities.Poll{}, r.logError("poll_repo_close_poll_failed", err, "poll_id", pollID)
	}
	return out, nil
}

func (r *Repository) HasVoted(ctx context.Context, pollID uint64, voter string) (bool, error) {
	var pollRow pollModel
	err := r.db.WithContext(ctx).
		Where("id = ?", pollID).
		First(&pollRow).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, domainerrors.ErrInvalidPollID
		}
		return false, r.logError("poll_repo_has_voted_poll_lookup_failed", err, "poll_id", pollID)
	}

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&voterModel{}).
		Where("poll_id = ?", pollID).
		Where("voter_id = ?", voter).
		Count(&count).Error; err != nil {
		return false, r.logError("poll_repo_has_voted_failed", err, "poll_id", pollID)
	}
	return count > 0, nil
}

func (r *Repository) ListPolls(ctx context.Context) ([]entities.Poll, error) {
	var pollRows []pollModel
	if err := r.db.WithContext(ctx).
		Order("id ASC").
		Find(&pollRows).Error; err != nil {
		return nil, r.logError("poll_repo_list_polls_failed", err)
	}
	var optionRows []optionModel
	if err := r.db.WithContext(ctx).
		Order("poll_id ASC, option_index ASC").
		Find(&optionRows).Error; err != nil {
		return nil, r.logError("poll_repo_list_options_failed", err)
	}

	optionsByPoll := make(map[uint64][]entities.Option)
	for _, row := range optionRows {
		optionsByPoll[row.PollID] = append(optionsByPoll[row.PollID], entities.Option{
			Name:      row.Name,
			VoteCount: row.VoteCount,
		})
	}
	items := make([]entities.Poll, 0, len(pollRows))
	for _, row := range pollRows {
		items = append(items, entities.Poll{
			ID:        row.ID,
			Question:  row.Question,
			Options:   optionsByPoll[row.ID],
			Creator:   row.Creator,
			CreatedAt: row.CreatedAt.UTC(),
			Active:    row.Active,
		})
	}
	return items, nil
}

func (r *Repository) PollCount(ctx context.Context) (uint64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&pollModel{}).
		Count(&count).Error; err != nil {
		return 0, r.logError("poll_repo_poll_count_failed", err)
	}
	return uint64(count), nil
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	row, err := outboxModelFromEnvelope(envelope)
	if err != nil {
		return r.logError("poll_repo_append_outbox_marshal_failed", err,
			"event_type", envelope.EventType,
		)
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		return r.logError("poll_repo_append_outbox_insert_failed", create.Error,
			"outbox_id", row.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("poll_repo_list_pending_outbox_failed", err, "limit", limit)
	}
	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", outboxID).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("poll_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", outboxID,
		)
	}
	if result.RowsAffected == 0 {
		return ports.ErrOutboxMessageNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "governance/poll-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("poll repository operation failed", fields...)
	return err
}

// loadPoll reads one poll with its options and voter set. forUpdate locks the
// poll row so the caller's transition is serialized against concurrent votes.
func loadPoll(tx *gorm.DB, pollID uint64, forUpdate bool) (entities.Poll, error) {
	query := tx.Where("id = ?", pollID)
	if forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var pollRow pollModel
	if err := query.First(&pollRow).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Poll{}, domainerrors.ErrInvalidPollID
		}
		return entities.Poll{}, err
	}

	var optionRows []optionModel
	if err := tx.Where("poll_id = ?", pollID).
		Order("option_index ASC").
		Find(&optionRows).Error; err != nil {
		return entities.Poll{}, err
	}
	var voterRows []voterModel
	if err := tx.Where("poll_id = ?", pollID).
		Find(&voterRows).Error; err != nil {
		return entities.Poll{}, err
	}

	return assemblePoll(pollRow, optionRows, voterRows), nil
}

func isDomainError(err error) bool {
	return errors.Is(err, domainerrors.ErrInvalidPollID) ||
		errors.Is(err, domainerrors.ErrPollClosed) ||
		errors.Is(err, domainerrors.ErrAlreadyVoted) ||
		errors.Is(err, domainerrors.ErrInvalidOptionIndex) ||
		errors.Is(err, domainerrors.ErrNotCreator) ||
		errors.Is(err, domainerrors.ErrAlreadyClosed)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// SystemClock satisfies ports.Clock with wall-clock UTC time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// UUIDGenerator satisfies ports.IDGenerator for event ids.
type UUIDGenerator struct{}

func (UUIDGenerator) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

type pollModel struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Question  string    `gorm:"column:question"`
	Creator   string    `gorm:"column:creator"`
	Active    bool      `gorm:"column:active"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (pollModel) TableName() string {
	return "polls"
}

type optionModel struct {
	PollID      uint64 `gorm:"column:poll_id;primaryKey"`
	OptionIndex int    `gorm:"column:option_index;primaryKey"`
	Name        string `gorm:"column:name"`
	VoteCount   uint64 `gorm:"column:vote_count"`
}

func (optionModel) TableName() string {
	return "poll_options"
}

type voterModel struct {
	PollID  uint64    `gorm:"column:poll_id;primaryKey"`
	VoterID string    `gorm:"column:voter_id;primaryKey"`
	VotedAt time.Time `gorm:"column:voted_at"`
}

func (voterModel) TableName() string {
	return "poll_voters"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "poll_outbox"
}

// pollRowFromEntity maps a poll entity onto its table row. The id column is
// left zero so postgres assigns it on insert.
func pollRowFromEntity(poll entities.Poll) pollModel {
	return pollModel{
		Question:  poll.Question,
		Creator:   poll.Creator,
		Active:    poll.Active,
		CreatedAt: poll.CreatedAt.UTC(),
	}
}

func optionRowsFromEntity(pollID uint64, options []entities.Option) []optionModel {
	rows := make([]optionModel, 0, len(options))
	for index, option := range options {
		rows = append(rows, optionModel{
			PollID:      pollID,
			OptionIndex: index,
			Name:        option.Name,
			VoteCount:   option.VoteCount,
		})
	}
	return rows
}

// assemblePoll rebuilds a poll entity from its rows. Options are keyed by
// option_index, so the slice position survives storage regardless of the
// order rows come back in.
func assemblePoll(pollRow pollModel, optionRows []optionModel, voterRows []voterModel) entities.Poll {
	sort.Slice(optionRows, func(i, j int) bool {
		return optionRows[i].OptionIndex < optionRows[j].OptionIndex
	})
	poll := entities.Poll{
		ID:        pollRow.ID,
		Question:  pollRow.Question,
		Creator:   pollRow.Creator,
		CreatedAt: pollRow.CreatedAt.UTC(),
		Active:    pollRow.Active,
		Options:   make([]entities.Option, 0, len(optionRows)),
		VotedBy:   make(map[string]struct{}, len(voterRows)),
	}
	for _, row := range optionRows {
		poll.Options = append(poll.Options, entities.Option{
			Name:      row.Name,
			VoteCount: row.VoteCount,
		})
	}
	for _, row := range voterRows {
		poll.VotedBy[row.VoterID] = struct{}{}
	}
	return poll
}

func outboxModelFromEnvelope(envelope ports.EventEnvelope) (outboxModel, error) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return outboxModel{}, err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return row, nil
}

var _ ports.PollRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
var _ ports.Clock = SystemClock{}
var _ ports.IDGenerator = UUIDGenerator{}
