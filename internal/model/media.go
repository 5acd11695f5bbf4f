package model

import "strings"

// MediaType is a catalog listing a room draws its candidates from.
type MediaType string

const (
	MediaDiscoverMovie   MediaType = "/discover/movie"
	MediaMovieNowPlaying MediaType = "/movie/now_playing"
	MediaMoviePopular    MediaType = "/movie/popular"
	MediaMovieTopRated   MediaType = "/movie/top_rated"
	MediaMovieUpcoming   MediaType = "/movie/upcoming"
	MediaDiscoverTV      MediaType = "/discover/tv"
	MediaTVTopRated      MediaType = "/tv/top_rated"
	MediaTVPopular       MediaType = "/tv/popular"
	MediaTVAiringToday   MediaType = "/tv/airing_today"
	MediaTVOnTheAir      MediaType = "/tv/on_the_air"
)

var mediaTypes = []MediaType{
	MediaDiscoverMovie,
	MediaMovieNowPlaying,
	MediaMoviePopular,
	MediaMovieTopRated,
	MediaMovieUpcoming,
	MediaDiscoverTV,
	MediaTVTopRated,
	MediaTVPopular,
	MediaTVAiringToday,
	MediaTVOnTheAir,
}

func MediaTypes() []MediaType {
	out := make([]MediaType, len(mediaTypes))
	copy(out, mediaTypes)
	return out
}

func (m MediaType) Valid() bool {
	for _, t := range mediaTypes {
		if t == m {
			return true
		}
	}
	return false
}

// Kind is the catalog family used for detail and genre lookups.
type Kind string

const (
	KindMovie Kind = "movie"
	KindTV    Kind = "tv"
)

func (m MediaType) Kind() Kind {
	if strings.Contains(string(m), "tv") {
		return KindTV
	}
	return KindMovie
}

// ParseKind accepts anything naming a family ("tv", "/discover/tv", "movie"...).
func ParseKind(s string) (Kind, bool) {
	switch {
	case strings.Contains(s, "tv"):
		return KindTV, true
	case strings.Contains(s, "movie"):
		return KindMovie, true
	}
	return "", false
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
