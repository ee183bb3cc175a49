package routes

import (
	"time"

	"community-backend/internal/auth"
	"community-backend/internal/moderation"
	"community-backend/internal/quota"
	"community-backend/internal/repository"
	"community-backend/internal/repository/memory"
	"community-backend/internal/services"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// Stores is the persistence the services are built on.
type Stores struct {
	Posts         repository.PostRepository
	Users         repository.UserRepository
	Notifications repository.NotificationRepository
	Likes         repository.LikeRepository
	Comments      repository.CommentRepository
	Tx            repository.TxRunner
}

func MongoStores(client *mongo.Client, db *mongo.Database, transactions bool) Stores {
	return Stores{
		Posts:         repository.NewPostRepository(db),
		Users:         repository.NewUserRepository(db),
		Notifications: repository.NewNotificationRepository(db),
		Likes:         repository.NewLikeRepository(db),
		Comments:      repository.NewCommentRepository(db),
		Tx:            &repository.MongoTx{Client: client, Enabled: transactions},
	}
}

func MemoryStores(s *memory.Store) Stores {
	return Stores{
		Posts:         s.Posts(),
		Users:         s.Users(),
		Notifications: s.Notifications(),
		Likes:         s.Likes(),
		Comments:      s.Comments(),
		Tx:            memory.Tx{},
	}
}

type Services struct {
	Posts         *services.PostService
	Engagement    *services.EngagementService
	Notifications *services.NotificationService
	Accounts      *services.AccountService
}

// NewServices wires the services. now may be nil for the wall clock.
func NewServices(st Stores, q *quota.Service, tokens *auth.HMAC, now func() time.Time) Services {
	notis := &services.NotificationService{Repo: st.Notifications, Now: now}
	return Services{
		Posts: &services.PostService{
			Posts:         st.Posts,
			Notifications: notis,
			Quota:         q,
			Gate:          moderation.NewUserGate(st.Users),
			Tx:            st.Tx,
			Now:           now,
		},
		Engagement: &services.EngagementService{
			Posts:         st.Posts,
			Comments:      st.Comments,
			Likes:         st.Likes,
			Users:         st.Users,
			Notifications: notis,
			Tx:            st.Tx,
			Now:           now,
		},
		Notifications: notis,
		Accounts: &services.AccountService{
			Users:         st.Users,
			Notifications: notis,
			Tokens:        tokens,
			Now:           now,
		},
	}
}
