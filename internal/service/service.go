package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"linkkit/internal/model"
	"linkkit/internal/repository"
	"linkkit/internal/util"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// StorageKey is the single key all code -> URL mappings live under.
const StorageKey = "shortenedUrls"

const cacheTTL = 24 * time.Hour

var (
	ErrInvalidURL = errors.New("please enter a valid URL (including http:// or https://)")
	ErrNotFound   = errors.New("short code not found")
)

type Service struct {
	Repo    repository.BlobStore
	Redis   *redis.Client      // may be nil if disabled
	Codes   util.CodeGenerator // must yield strings accepted by util.IsCode
	BaseURL string
	Log     logrus.FieldLogger
}

// NewService builds a shortener whose links are baseURL#code. baseURL is
// stripped of any query or fragment.
func NewService(r repository.BlobStore, rc *redis.Client, baseURL string, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		Repo:    r,
		Redis:   rc,
		Codes:   util.NewCodeGenerator(nil),
		BaseURL: util.StripLocation(baseURL),
		Log:     log.WithField("component", "shortener"),
	}
}

func (s *Service) load(ctx context.Context) (map[string]string, error) {
	raw, err := s.Repo.Get(ctx, StorageKey)
	if errors.Is(err, repository.ErrNotFound) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func decode(raw []byte) (map[string]string, error) {
	m := map[string]string{}
	if len(raw) == 0 {
		return m, nil
	}
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", StorageKey, err)
	}
	if m == nil {
		m = map[string]string{}
	}
	return m, nil
}

// Link is the fragment-addressed link for code.
func (s *Service) Link(code string) string {
	return LinkAt(s.BaseURL, code)
}

// LinkAt addresses code under an arbitrary page URL.
func LinkAt(base, code string) string {
	return util.StripLocation(base) + "#" + code
}

// Shorten stores original under a fresh code. A code that already exists is
// overwritten.
func (s *Service) Shorten(ctx context.Context, original string) (*model.ShortLink, error) {
	original = strings.TrimSpace(original)
	if !util.ValidateURL(original) {
		return nil, ErrInvalidURL
	}

	code := s.Codes()
	err := s.Repo.Update(ctx, StorageKey, func(old []byte) ([]byte, error) {
		urls, err := decode(old)
		if err != nil {
			return nil, err
		}
		if prev, ok := urls[code]; ok && prev != original {
			s.Log.WithFields(logrus.Fields{"code": code, "previous": prev}).Warn("short code reused, overwriting")
		}
		urls[code] = original
		return json.Marshal(urls)
	})
	if err != nil {
		return nil, fmt.Errorf("save %s: %w", code, err)
	}

	// cache in redis
	if s.Redis != nil {
		if err := s.Redis.Set(ctx, "short:"+code, original, cacheTTL).Err(); err != nil {
			s.Log.WithError(err).Warn("redis set failed")
		}
	}

	s.Log.WithFields(logrus.Fields{"code": code, "url": original}).Info("short link created")
	return &model.ShortLink{ShortCode: code, OriginalURL: original, ShortURL: s.Link(code)}, nil
}

// Resolve looks code up by exact match. Strings that are not well-formed
// codes miss without touching the cache or the store.
func (s *Service) Resolve(ctx context.Context, code string) (string, error) {
	if !util.IsCode(code) {
		return "", ErrNotFound
	}
	// try cache first
	if s.Redis != nil {
		if val, err := s.Redis.Get(ctx, "short:"+code).Result(); err == nil {
			return val, nil
		} else if !errors.Is(err, redis.Nil) {
			s.Log.WithError(err).Warn("redis get failed")
		}
	}

	urls, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	original, ok := urls[code]
	if !ok {
		return "", ErrNotFound
	}

	// populate cache
	if s.Redis != nil {
		if err := s.Redis.Set(ctx, "short:"+code, original, cacheTTL).Err(); err != nil {
			s.Log.WithError(err).Warn("redis set failed")
		}
	}
	return original, nil
}

// Land decides what opening location should do: nothing when it carries no
// fragment, a redirect when the fragment is a known code, otherwise a
// not-found page that links back to the tool.
func (s *Service) Land(ctx context.Context, location string) (*model.Landing, error) {
	u, err := url.Parse(strings.TrimSpace(location))
	if err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}
	home := util.StripLocation(location)
	if u.Fragment == "" {
		return &model.Landing{Kind: model.LandingIdle, Home: home}, nil
	}

	code := u.Fragment
	target, err := s.Resolve(ctx, code)
	switch {
	case errors.Is(err, ErrNotFound):
		s.Log.WithField("code", code).Info("unknown short code")
		return &model.Landing{Kind: model.LandingNotFound, Code: code, Home: home}, nil
	case err != nil:
		return nil, err
	}
	return &model.Landing{Kind: model.LandingRedirect, Code: code, Target: target, Home: home}, nil
}

// List returns every stored mapping ordered by code.
func (s *Service) List(ctx context.Context) ([]model.ShortLink, error) {
	urls, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]model.ShortLink, 0, len(urls))
	for code, original := range urls {
		res = append(res, model.ShortLink{ShortCode: code, OriginalURL: original, ShortURL: s.Link(code)})
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ShortCode < res[j].ShortCode })
	return res, nil
}
