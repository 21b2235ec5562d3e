package identity

import "context"

type Repository interface {
	GetUserByNickname(ctx context.Context, nickname string) (User, bool, error)
	GetBoardBySlug(ctx context.Context, slug string) (Board, bool, error)
}
