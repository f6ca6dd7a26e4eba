package repository

import (
	"context"

	"wayfarer/internal/models"

	"gorm.io/gorm"
)

// VoteRepository manages reply votes and their tallies. Every mutation
// pairs the vote row change with an atomic store-side tally update in one
// transaction, so two concurrent voters never lose an increment.
type VoteRepository interface {
	Get(ctx context.Context, replyID, userID uint) (*models.ReplyVote, error)
	Cast(ctx context.Context, replyID, userID uint, voteType string) error
	Retract(ctx context.Context, vote *models.ReplyVote) error
	Switch(ctx context.Context, vote *models.ReplyVote, newType string) error
}

type voteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a new VoteRepository
func NewVoteRepository(db *gorm.DB) VoteRepository {
	return &voteRepository{db: db}
}

func tallyColumn(voteType string) string {
	if voteType == models.VoteUpvote {
		return "upvotes"
	}
	return "downvotes"
}

// bumpPostUpvotes keeps the post-level upvote aggregate in step with its
// replies. Only upvotes roll up; downvotes stay reply-local.
func bumpPostUpvotes(tx *gorm.DB, replyID uint, delta int) error {
	sub := tx.Session(&gorm.Session{NewDB: true}).
		Model(&models.Reply{}).
		Select("post_id").
		Where("id = ?", replyID)
	q := tx.Model(&models.Post{}).Where("id = (?)", sub)
	if delta < 0 {
		q = q.Where("upvotes_count > 0")
	}
	return q.UpdateColumn("upvotes_count", gorm.Expr("upvotes_count + ?", delta)).Error
}

func (r *voteRepository) Get(ctx context.Context, replyID, userID uint) (*models.ReplyVote, error) {
	var vote models.ReplyVote
	err := r.db.WithContext(ctx).
		Where("reply_id = ? AND user_id = ?", replyID, userID).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *voteRepository) Cast(ctx context.Context, replyID, userID uint, voteType string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		vote := &models.ReplyVote{ReplyID: replyID, UserID: userID, VoteType: voteType}
		if err := tx.Create(vote).Error; err != nil {
			return err
		}
		col := tallyColumn(voteType)
		if err := tx.Model(&models.Reply{}).
			Where("id = ?", replyID).
			UpdateColumn(col, gorm.Expr(col+" + 1")).Error; err != nil {
			return err
		}
		if voteType != models.VoteUpvote {
			return nil
		}
		return bumpPostUpvotes(tx, replyID, 1)
	})
}

func (r *voteRepository) Retract(ctx context.Context, vote *models.ReplyVote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.ReplyVote{}, vote.ID).Error; err != nil {
			return err
		}
		col := tallyColumn(vote.VoteType)
		res := tx.Model(&models.Reply{}).
			Where("id = ? AND "+col+" > 0", vote.ReplyID).
			UpdateColumn(col, gorm.Expr(col+" - 1"))
		if res.Error != nil {
			return res.Error
		}
		// The post aggregate only moves when the reply tally actually did.
		if vote.VoteType != models.VoteUpvote || res.RowsAffected == 0 {
			return nil
		}
		return bumpPostUpvotes(tx, vote.ReplyID, -1)
	})
}

func (r *voteRepository) Switch(ctx context.Context, vote *models.ReplyVote, newType string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ReplyVote{}).
			Where("id = ?", vote.ID).
			Update("vote_type", newType).Error; err != nil {
			return err
		}
		oldCol := tallyColumn(vote.VoteType)
		newCol := tallyColumn(newType)
		dec := tx.Model(&models.Reply{}).
			Where("id = ? AND "+oldCol+" > 0", vote.ReplyID).
			UpdateColumn(oldCol, gorm.Expr(oldCol+" - 1"))
		if dec.Error != nil {
			return dec.Error
		}
		if err := tx.Model(&models.Reply{}).
			Where("id = ?", vote.ReplyID).
			UpdateColumn(newCol, gorm.Expr(newCol+" + 1")).Error; err != nil {
			return err
		}
		// Exactly one side of the switch touches the upvote aggregate.
		if newType == models.VoteUpvote {
			return bumpPostUpvotes(tx, vote.ReplyID, 1)
		}
		if dec.RowsAffected == 0 {
			return nil
		}
		return bumpPostUpvotes(tx, vote.ReplyID, -1)
	})
}
