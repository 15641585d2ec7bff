// Package seed fills a store with demo users, groups, posts, comments and
// follows. Author popularity follows Zipf's law, so a few authors write
// most posts and collect most followers.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/service"

	"github.com/hashicorp/go-multierror"
)

const DefaultPassword = "yatube-demo-pass"

type Config struct {
	NumUsers    int
	NumGroups   int
	NumPosts    int
	NumComments int
	// MaxFollows caps how many authors one user follows.
	MaxFollows int
	ZipfS      float64
	Workers    int
	Seed       int64
}

func DefaultConfig() Config {
	return Config{
		NumUsers:    20,
		NumGroups:   5,
		NumPosts:    100,
		NumComments: 150,
		MaxFollows:  5,
		ZipfS:       1.07,
		Workers:     5,
		Seed:        time.Now().UnixNano(),
	}
}

// Stats counts what a run created.
type Stats struct {
	mu       sync.Mutex
	Users    int
	Groups   int
	Posts    int
	Comments int
	Follows  int
	Errors   int
	Duration time.Duration
}

func (st *Stats) add(field *int) {
	st.mu.Lock()
	*field++
	st.mu.Unlock()
}

type Seeder struct {
	config Config
	svc    *service.Service
	logger *slog.Logger
	stats  *Stats

	mu     sync.Mutex
	rng    *rand.Rand
	users  []*models.User
	groups []*models.Group
	posts  []*models.Post
}

func New(svc *service.Service, config Config, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.ZipfS <= 1 {
		config.ZipfS = 1.07
	}
	return &Seeder{
		config: config,
		svc:    svc,
		logger: logger,
		stats:  &Stats{},
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Run executes every phase in order. Individual failures are counted and
// returned together; a cancelled context stops the run.
func (s *Seeder) Run(ctx context.Context) (*Stats, error) {
	start := time.Now()
	var result *multierror.Error

	phases := []struct {
		name string
		run  func(context.Context) error
	}{
		{"users", s.createUsers},
		{"groups", s.createGroups},
		{"follows", s.createFollows},
		{"posts", s.createPosts},
		{"comments", s.createComments},
	}
	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return s.stats, err
		}
		s.logger.Info("seeding", "phase", phase.name)
		if err := phase.run(ctx); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", phase.name, err))
		}
	}

	s.stats.Duration = time.Since(start)
	return s.stats, result.ErrorOrNil()
}

// zipf picks an index in [0, n) favouring small indexes.
func (s *Seeder) zipf(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 1 {
		return 0
	}
	z := rand.NewZipf(s.rng, s.config.ZipfS, 1, uint64(n-1))
	return int(z.Uint64())
}

func (s *Seeder) intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// parallel runs job for 0..n-1 on the configured number of workers.
func (s *Seeder) parallel(ctx context.Context, n int, job func(context.Context, int) error) error {
	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var (
		wg     sync.WaitGroup
		errMu  sync.Mutex
		result *multierror.Error
	)
	for w := 0; w < s.config.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					return
				}
				if err := job(ctx, i); err != nil {
					s.stats.add(&s.stats.Errors)
					errMu.Lock()
					result = multierror.Append(result, err)
					errMu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	return result.ErrorOrNil()
}

func (s *Seeder) createUsers(ctx context.Context) error {
	return s.parallel(ctx, s.config.NumUsers, func(ctx context.Context, i int) error {
		first := firstNames[i%len(firstNames)]
		user, err := s.svc.CreateUser(ctx, fmt.Sprintf("user%03d", i), DefaultPassword, first, "Demo")
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.users = append(s.users, user)
		s.mu.Unlock()
		s.stats.add(&s.stats.Users)
		return nil
	})
}

func (s *Seeder) createGroups(ctx context.Context) error {
	return s.parallel(ctx, s.config.NumGroups, func(ctx context.Context, i int) error {
		theme := themes[i%len(themes)]
		slug := theme
		if i >= len(themes) {
			slug = fmt.Sprintf("%s-%d", theme, i/len(themes))
		}
		group, err := s.svc.CreateGroup(ctx, "All about "+theme, slug, "Posts about "+theme+".")
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.groups = append(s.groups, group)
		s.mu.Unlock()
		s.stats.add(&s.stats.Groups)
		return nil
	})
}

func (s *Seeder) createFollows(ctx context.Context) error {
	if len(s.users) < 2 || s.config.MaxFollows <= 0 {
		return nil
	}
	return s.parallel(ctx, len(s.users), func(ctx context.Context, i int) error {
		reader := s.users[i]
		count := s.zipf(s.config.MaxFollows) + 1
		for j := 0; j < count; j++ {
			author := s.users[s.zipf(len(s.users))]
			_, outcome, err := s.svc.Follow(ctx, reader.ID, author.Username)
			if err != nil {
				return err
			}
			if outcome == service.Done {
				s.stats.add(&s.stats.Follows)
			}
		}
		return nil
	})
}

func (s *Seeder) createPosts(ctx context.Context) error {
	if len(s.users) == 0 {
		return nil
	}
	return s.parallel(ctx, s.config.NumPosts, func(ctx context.Context, i int) error {
		author := s.users[s.zipf(len(s.users))]
		form := forms.NewPostForm()
		form.Text = fmt.Sprintf("%s #%d from %s", sentences[i%len(sentences)], i, author.Username)
		if len(s.groups) > 0 && s.intn(3) > 0 {
			form.Group = s.groups[s.zipf(len(s.groups))].Slug
		}
		post, err := s.svc.CreatePost(ctx, author.ID, form)
		if err != nil {
			return err
		}
		if post == nil {
			return fmt.Errorf("post %d rejected: %v", i, form.Errors)
		}
		s.mu.Lock()
		s.posts = append(s.posts, post)
		s.mu.Unlock()
		s.stats.add(&s.stats.Posts)
		return nil
	})
}

func (s *Seeder) createComments(ctx context.Context) error {
	if len(s.users) == 0 || len(s.posts) == 0 {
		return nil
	}
	return s.parallel(ctx, s.config.NumComments, func(ctx context.Context, i int) error {
		post := s.posts[s.zipf(len(s.posts))]
		commenter := s.users[s.intn(len(s.users))]
		form := forms.NewCommentForm()
		form.Text = replies[i%len(replies)]
		comment, err := s.svc.AddComment(ctx, commenter.ID, post.AuthorUsername, post.ID, form)
		if err != nil {
			return err
		}
		if comment != nil {
			s.stats.add(&s.stats.Comments)
		}
		return nil
	})
}

var (
	firstNames = []string{"Leo", "Ann", "Ivan", "Maria", "Olga", "Petr", "Nina", "Sasha"}

	themes = []string{
		"gaming", "tech", "science", "music", "movies",
		"books", "sports", "food", "travel", "art",
		"photography", "fitness", "programming", "news", "memes",
		"history", "nature", "pets", "fashion", "diy",
	}

	sentences = []string{
		"Went for a long walk today",
		"Finally finished that book",
		"Trying a new recipe tonight",
		"Thoughts on the latest release",
		"A picture is worth a thousand words",
		"Here is what I learned this week",
	}

	replies = []string{
		"Great post!",
		"Thanks for sharing.",
		"I disagree, but nicely written.",
		"More of this please.",
		"Where was this?",
	}
)
