package services

import (
	"github.com/tensorflow/tfhub.dev/internal/domain/values"
)

// SkeletonTag is a metadata line proposed for a new document.
type SkeletonTag struct {
	Key   string
	Value string
}

// SkeletonTags returns the required tags of p with placeholder values that
// pass ValidateMetadata when the registry lists the placeholder task.
func SkeletonTags(p Policy, h values.Handle, host string) []SkeletonTag {
	if host == "" {
		host = DefaultCatalogHost
	}

	placeholder := func(key string) string {
		switch key {
		case KeyAssetPath:
			return "https://storage.googleapis.com/" + h.Publisher + "/" + h.Name + "/" + h.Version + p.AssetSuffix
		case KeyFineTunable:
			return "false"
		case KeyFormat:
			return "saved_model_2"
		case KeyTask:
			return "text-embedding"
		case KeyParentModel:
			return "https://" + host + "/" + h.Publisher + "/" + h.Name + "/" + h.Version
		default:
			return "TODO"
		}
	}

	keys := p.Required.Sorted()
	out := make([]SkeletonTag, 0, len(keys))
	for _, key := range keys {
		out = append(out, SkeletonTag{Key: key, Value: placeholder(key)})
	}
	return out
}
