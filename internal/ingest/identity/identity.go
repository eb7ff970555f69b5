// Package identity derives the secondary identifiers of creatives: the image
// and video ids embedded in their spec columns, and the synthetic ids of
// creatives and text snippets that arrive without one.
package identity

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s IDSet) Add(id string) {
	if id != "" {
		s[id] = struct{}{}
	}
}

func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// ExtractVideoIDs collects the creative's video_id column, the story spec's
// video_data.video_id and every video_id in the feed spec's videos list.
func ExtractVideoIDs(c ads.AdCreative) (IDSet, error) {
	ids := NewIDSet()
	if c.VideoID != nil {
		ids.Add(*c.VideoID)
	}
	story, err := DecodeSpec(c.ObjectStorySpecJSON)
	if err != nil {
		return nil, fmt.Errorf("creative %s object_story_spec: %w", c.PlatformAdCreativeID, err)
	}
	if videoData, ok := field(story, "video_data").(map[string]any); ok {
		ids.Add(idString(videoData["video_id"]))
	}
	feed, err := DecodeSpec(c.AssetFeedSpecJSON)
	if err != nil {
		return nil, fmt.Errorf("creative %s asset_feed_spec: %w", c.PlatformAdCreativeID, err)
	}
	for _, item := range list(field(feed, "videos")) {
		ids.Add(idString(field(item, "video_id")))
	}
	return ids, nil
}

// ExtractImageIDs collects image_hash, the story spec's image_hash and every
// hash in the feed spec's images list.
func ExtractImageIDs(c ads.AdCreative) (IDSet, error) {
	ids := NewIDSet()
	if c.ImageHash != nil {
		ids.Add(*c.ImageHash)
	}
	story, err := DecodeSpec(c.ObjectStorySpecJSON)
	if err != nil {
		return nil, fmt.Errorf("creative %s object_story_spec: %w", c.PlatformAdCreativeID, err)
	}
	ids.Add(idString(field(story, "image_hash")))
	feed, err := DecodeSpec(c.AssetFeedSpecJSON)
	if err != nil {
		return nil, fmt.Errorf("creative %s asset_feed_spec: %w", c.PlatformAdCreativeID, err)
	}
	for _, item := range list(field(feed, "images")) {
		ids.Add(idString(field(item, "hash")))
	}
	return ids, nil
}

// Invert builds the asset id -> referencing keys index. Every key that
// references an id is kept, in ascending order.
func Invert[K cmp.Ordered](byKey map[K]IDSet) map[string][]K {
	out := make(map[string][]K)
	for k, ids := range byKey {
		for id := range ids {
			out[id] = append(out[id], k)
		}
	}
	for id := range out {
		slices.Sort(out[id])
	}
	return out
}

// Union flattens every set in byKey into one.
func Union[K comparable](byKey map[K]IDSet) IDSet {
	out := NewIDSet()
	for _, ids := range byKey {
		for id := range ids {
			out.Add(id)
		}
	}
	return out
}

func field(v any, key string) any {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

func idString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
