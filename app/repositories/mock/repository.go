package mock

import (
	"context"
	"sort"
	"sync"
	"time"

	"inkpost/app/models"
	"inkpost/app/repositories"
)

// Store is an in-memory repositories.Store. The four repositories share one
// lock so that cascades and foreign key checks behave like the real backends.
type Store struct {
	mutex sync.RWMutex

	users    map[int]*models.User
	posts    map[int]*models.Post
	comments map[int]*models.Comment
	sessions map[string]*models.Session

	nextUserID    int
	nextPostID    int
	nextCommentID int

	// Err, when set, is returned by every operation.
	Err error
	// Now is the clock used for session expiry.
	Now func() time.Time
}

// NewStore creates an empty Store.
func NewStore() *Store {
	s := &Store{Now: time.Now}
	s.Clear()
	return s
}

// Clear drops all records and resets the sequences.
func (s *Store) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.users = make(map[int]*models.User)
	s.posts = make(map[int]*models.Post)
	s.comments = make(map[int]*models.Comment)
	s.sessions = make(map[string]*models.Session)
	s.nextUserID, s.nextPostID, s.nextCommentID = 1, 1, 1
}

func (s *Store) Users() repositories.UserRepository       { return (*UserRepository)(s) }
func (s *Store) Posts() repositories.PostRepository       { return (*PostRepository)(s) }
func (s *Store) Comments() repositories.CommentRepository { return (*CommentRepository)(s) }
func (s *Store) Sessions() repositories.SessionRepository { return (*SessionRepository)(s) }

func (s *Store) Ping(ctx context.Context) error { return s.check(ctx) }

func (s *Store) Close() error { return nil }

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Err
}

// UserRepository is the user view of a Store.
type UserRepository Store

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, existing := range s.users {
		if existing.Email == user.Email {
			return repositories.ErrDuplicate
		}
	}
	user.ID = s.nextUserID
	s.nextUserID++
	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	user, exists := s.users[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	found := *user
	return &found, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, user := range s.users {
		if user.Email == email {
			found := *user
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

// PostRepository is the post view of a Store.
type PostRepository Store

func (r *PostRepository) Create(ctx context.Context, post *models.Post) error {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.titleTaken(post.Title, 0) {
		return repositories.ErrDuplicate
	}
	post.ID = s.nextPostID
	s.nextPostID++
	stored := *post
	s.posts[post.ID] = &stored
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id int) (*models.Post, error) {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	post, exists := s.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	found := *post
	return &found, nil
}

func (r *PostRepository) List(ctx context.Context) ([]*models.Post, error) {
	return r.filter(ctx, func(*models.Post) bool { return true })
}

func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int) ([]*models.Post, error) {
	return r.filter(ctx, func(p *models.Post) bool { return p.AuthorID == authorID })
}

func (r *PostRepository) filter(ctx context.Context, keep func(*models.Post) bool) ([]*models.Post, error) {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	posts := []*models.Post{}
	for _, post := range s.posts {
		if keep(post) {
			found := *post
			posts = append(posts, &found)
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
	return posts, nil
}

func (r *PostRepository) Update(ctx context.Context, post *models.Post) error {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	if s.titleTaken(post.Title, post.ID) {
		return repositories.ErrDuplicate
	}
	stored := *post
	s.posts[post.ID] = &stored
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int) error {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(s.posts, id)
	for commentID, comment := range s.comments {
		if comment.PostID == id {
			delete(s.comments, commentID)
		}
	}
	return nil
}

// titleTaken must be called with the lock held.
func (s *Store) titleTaken(title string, ownerID int) bool {
	for _, post := range s.posts {
		if post.Title == title && post.ID != ownerID {
			return true
		}
	}
	return false
}

// CommentRepository is the comment view of a Store.
type CommentRepository Store

func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) error {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.posts[comment.PostID]; !exists {
		return repositories.ErrNotFound
	}
	comment.ID = s.nextCommentID
	s.nextCommentID++
	stored := *comment
	s.comments[comment.ID] = &stored
	return nil
}

func (r *CommentRepository) ListByPost(ctx context.Context, postID int) ([]*models.Comment, error) {
	return r.filter(ctx, func(c *models.Comment) bool { return c.PostID == postID })
}

func (r *CommentRepository) ListByAuthor(ctx context.Context, authorID int) ([]*models.Comment, error) {
	return r.filter(ctx, func(c *models.Comment) bool { return c.AuthorID == authorID })
}

func (r *CommentRepository) filter(ctx context.Context, keep func(*models.Comment) bool) ([]*models.Comment, error) {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	comments := []*models.Comment{}
	for _, comment := range s.comments {
		if keep(comment) {
			found := *comment
			comments = append(comments, &found)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

// SessionRepository is the session view of a Store.
type SessionRepository Store

func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored := *session
	s.sessions[session.ID] = &stored
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, exists := s.sessions[id]
	if !exists || session.Expired(s.Now()) {
		return nil, repositories.ErrNotFound
	}
	found := *session
	return &found, nil
}

func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	s := (*Store)(r)
	if err := s.check(ctx); err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.sessions, id)
	return nil
}
