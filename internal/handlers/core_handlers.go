package handlers

import (
	"context"
	"net/http"
	"strconv"

	"yatube/internal/render"

	"github.com/gorilla/mux"
)

// HandleHealth reports liveness.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	}
}

// indexCacheKey is keyed on the resolved page number so arbitrary ?page=
// values share the entries of the pages they resolve to.
func indexCacheKey(r *http.Request, number int) string {
	who := "anonymous"
	if v := viewer(r); v != nil {
		who = v.ID.String()
	}
	return "index_page:" + who + ":" + strconv.Itoa(number)
}

// HandleIndex serves the newest posts. Rendered pages are cached for
// PageCacheTTL, so new posts show up once the entry expires.
func (s *Server) HandleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		build := func(page string) ([]byte, error) {
			// The computation may be shared by other requests.
			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), s.RequestTimeout)
			defer cancel()
			feed, err := s.Service.Index(ctx, page)
			if err != nil {
				return nil, err
			}
			return s.Renderer.Bytes(render.Index, &render.FeedView{
				Base: base(r, "Latest updates"),
				Page: feed,
			})
		}

		if s.Cache == nil || s.PageCacheTTL <= 0 {
			body, err := build(pageParam(r))
			if err != nil {
				s.fail(w, r, err)
				return
			}
			render.Write(w, http.StatusOK, body)
			return
		}

		number, err := s.Service.IndexPageNumber(r.Context(), pageParam(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		body, hit, err := s.Cache.GetOrCompute(indexCacheKey(r, number), s.PageCacheTTL, func() ([]byte, error) {
			return build(strconv.Itoa(number))
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if hit {
			w.Header().Set("X-Cache", "HIT")
		} else {
			w.Header().Set("X-Cache", "MISS")
		}
		render.Write(w, http.StatusOK, body)
	}
}

// HandleGroup serves one group's posts.
func (s *Server) HandleGroup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		group, feed, err := s.Service.GroupFeed(r.Context(), mux.Vars(r)["slug"], pageParam(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.page(w, r, http.StatusOK, render.Group, &render.FeedView{
			Base:  base(r, group.Title),
			Page:  feed,
			Group: group,
		})
	}
}

// HandleFollowFeed serves posts by the authors the viewer follows.
func (s *Server) HandleFollowFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		feed, err := s.Service.FollowFeed(r.Context(), viewerID(r), pageParam(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		s.page(w, r, http.StatusOK, render.Follow, &render.FeedView{
			Base: base(r, "Following"),
			Page: feed,
		})
	}
}
