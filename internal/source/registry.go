package source

import "sort"

// serviceFeeds maps a service identifier to its release-notes URL. Most
// entries are Atom feeds; a few services only publish an HTML page.
var serviceFeeds = map[string]string{
	// Applications & development
	"apphub":          "https://cloud.google.com/feeds/apphub-release-notes.xml",
	"api-gateway":     "https://cloud.google.com/feeds/api-gateway-release-notes.xml",
	"cloud-build":     "https://cloud.google.com/feeds/cloud-build-release-notes.xml",
	"cloud-deploy":    "https://cloud.google.com/feeds/deploy-release-notes.xml",
	"cloud-functions": "https://cloud.google.com/feeds/cloud-functions-release-notes.xml",
	"cloud-run":       "https://cloud.google.com/feeds/cloud-run-release-notes.xml",
	"cloud-sdk":       "https://cloud.google.com/sdk/docs/release-notes",
	"cloud-tasks":     "https://cloud.google.com/feeds/cloud-tasks-release-notes.xml",
	"eventarc":        "https://cloud.google.com/feeds/eventarc-release-notes.xml",
	"workflows":       "https://cloud.google.com/feeds/workflows-release-notes.xml",

	// Apigee
	"apigee": "https://cloud.google.com/feeds/apigee-release-notes.xml",

	// Databases & data analytics
	"alloydb":            "https://cloud.google.com/feeds/alloydb-release-notes.xml",
	"bigquery":           "https://cloud.google.com/feeds/bigquery-release-notes.xml",
	"firestore":          "https://cloud.google.com/feeds/cloud-firestore-release-notes.xml",
	"spanner":            "https://cloud.google.com/feeds/cloud-spanner-release-notes.xml",
	"cloud-sql":          "https://cloud.google.com/feeds/cloud-sql-release-notes.xml",
	"dataflow":           "https://cloud.google.com/feeds/dataflow-release-notes.xml",
	"database-migration": "https://cloud.google.com/feeds/database-migration-service-release-notes.xml",
	"memorystore-redis":  "https://cloud.google.com/feeds/memorystore-redis-release-notes.xml",

	// Security & identity
	"cloud-armor":             "https://cloud.google.com/feeds/google-cloud-armor-release-notes.xml",
	"cloud-kms":               "https://cloud.google.com/feeds/cloud-kms-release-notes.xml",
	"iam":                     "https://cloud.google.com/feeds/cloud-iam-release-notes.xml",
	"secret-manager":          "https://cloud.google.com/feeds/secret-manager-release-notes.xml",
	"security-command-center": "https://cloud.google.com/feeds/scc-release-notes.xml",

	// Networking
	"cloud-cdn":      "https://cloud.google.com/feeds/cloud-cdn-release-notes.xml",
	"cloud-dns":      "https://cloud.google.com/feeds/cloud-dns-release-notes.xml",
	"load-balancing": "https://cloud.google.com/feeds/cloud-load-balancing-release-notes.xml",
	"cloud-nat":      "https://cloud.google.com/feeds/cloud-nat-release-notes.xml",
	"vpc":            "https://cloud.google.com/feeds/vpc-release-notes.xml",

	// Storage
	"artifact-registry": "https://cloud.google.com/feeds/artifactregistry-release-notes.xml",
	"cloud-storage":     "https://cloud.google.com/feeds/cloud-storage-release-notes.xml",
	"filestore":         "https://cloud.google.com/feeds/cloud-filestore-release-notes.xml",

	// Compute / infrastructure
	"compute-engine": "https://cloud.google.com/feeds/compute-engine-release-notes.xml",
	"cloud-tpu":      "https://cloud.google.com/feeds/cloud-tpu-release-notes.xml",
	"vmware-engine":  "https://cloud.google.com/feeds/vmware-engine-release-notes.xml",

	// GKE channels
	"gke":         "https://cloud.google.com/feeds/kubernetes-engine-release-notes.xml",
	"gke-rapid":   "https://cloud.google.com/feeds/kubernetes-engine-rapid-channel-release-notes.xml",
	"gke-regular": "https://cloud.google.com/feeds/kubernetes-engine-regular-channel-release-notes.xml",
	"gke-stable":  "https://cloud.google.com/feeds/kubernetes-engine-stable-channel-release-notes.xml",

	// Management & operations
	"cloud-logging":    "https://cloud.google.com/feeds/cloud-logging-release-notes.xml",
	"cloud-monitoring": "https://cloud.google.com/feeds/cloud-monitoring-release-notes.xml",
	"cloud-scheduler":  "https://cloud.google.com/feeds/cloud-scheduler-release-notes.xml",

	// AI & machine learning
	"antigravity":        "https://antigravity.google/changelog",
	"dialogflow":         "https://cloud.google.com/feeds/dialogflow-release-notes.xml",
	"document-ai":        "https://cloud.google.com/feeds/document-ai-release-notes.xml",
	"gemini-cli":         "https://github.com/google-gemini/gemini-cli/releases.atom",
	"gemini-code-assist": "https://cloud.google.com/feeds/gemini-code-assist-release-notes.xml",
	"speech-to-text":     "https://cloud.google.com/feeds/speech-to-text-release-notes.xml",
	"translation":        "https://cloud.google.com/feeds/cloud-translation-release-notes.xml",
	"vertex-ai":          "https://cloud.google.com/feeds/vertex-ai-release-notes.xml",

	// Specialized
	"cloud-composer": "https://cloud.google.com/feeds/cloud-composer-release-notes.xml",
	"healthcare-api": "https://cloud.google.com/feeds/healthcare-api-release-notes.xml",

	// Workspace
	"apps-script":    "https://developers.google.com/feeds/apps-script-release-notes.xml",
	"workspace-blog": "http://feeds.feedburner.com/GoogleAppsUpdates",

	// Firebase
	"firebase":         "https://firebase.google.com/support/release-notes",
	"firebase-android": "https://firebase.google.com/support/release-notes/android",
	"firebase-ios":     "https://firebase.google.com/support/release-notes/ios",
	"firebase-js":      "https://firebase.google.com/support/release-notes/js",
}

// serviceFallbacks holds HTML fallback URLs for services whose feed is
// missing or known to 404.
var serviceFallbacks = map[string]string{
	"api-gateway":        "https://cloud.google.com/api-gateway/docs/release-notes",
	"cloud-deploy":       "https://cloud.google.com/deploy/docs/release-notes",
	"cloud-sdk":          "https://cloud.google.com/sdk/docs/release-notes",
	"antigravity":        "https://antigravity.google/changelog",
	"dialogflow":         "https://cloud.google.com/dialogflow/docs/release-notes",
	"document-ai":        "https://cloud.google.com/document-ai/docs/release-notes",
	"gemini-code-assist": "https://cloud.google.com/gemini/docs/codeassist/release-notes",
	"speech-to-text":     "https://cloud.google.com/speech-to-text/docs/release-notes",
	"translation":        "https://cloud.google.com/translate/docs/release-notes",
	"vertex-ai":          "https://cloud.google.com/vertex-ai/docs/release-notes",
	"cloud-nat":          "https://cloud.google.com/nat/docs/release-notes",
	"database-migration": "https://cloud.google.com/database-migration/docs/release-notes",
	"memorystore-redis":  "https://cloud.google.com/memorystore/docs/redis/release-notes",
	"healthcare-api":     "https://cloud.google.com/healthcare-api/docs/release-notes",
}

// serviceGroups maps a group name to its member services.
var serviceGroups = map[string][]string{
	"apps": {
		"apphub", "api-gateway", "cloud-build", "cloud-deploy", "cloud-functions",
		"cloud-run", "cloud-sdk", "cloud-tasks", "eventarc", "workflows",
	},
	"apigee": {"apigee"},
	"databases": {
		"alloydb", "bigquery", "firestore", "spanner", "cloud-sql", "dataflow",
		"database-migration", "memorystore-redis",
	},
	"security": {
		"cloud-armor", "cloud-kms", "iam", "secret-manager", "security-command-center",
	},
	"networking": {
		"cloud-cdn", "cloud-dns", "load-balancing", "cloud-nat", "vpc",
	},
	"storage": {
		"artifact-registry", "cloud-storage", "filestore",
	},
	"compute": {
		"compute-engine", "cloud-tpu", "vmware-engine",
	},
	"gke": {
		"gke", "gke-rapid", "gke-regular", "gke-stable",
	},
	"operations": {
		"cloud-logging", "cloud-monitoring", "cloud-scheduler",
	},
	"ai": {
		"antigravity", "dialogflow", "document-ai", "gemini-cli",
		"gemini-code-assist", "speech-to-text", "translation", "vertex-ai",
	},
	"specialized": {
		"cloud-composer", "healthcare-api",
	},
	"workspace": {
		"apps-script", "workspace-blog",
	},
	"firebase": {
		"firebase", "firebase-android", "firebase-ios", "firebase-js",
	},
}

// blogURLs maps blog identifiers to their landing pages and feeds.
var blogURLs = map[string]string{
	"app-dev":       "https://cloud.google.com/blog/products/application-development",
	"app-mod":       "https://cloud.google.com/blog/products/application-modernization",
	"infra":         "https://cloud.google.com/blog/products/infrastructure",
	"containers":    "https://cloud.google.com/blog/products/containers-kubernetes",
	"ai-ml":         "https://cloud.google.com/blog/products/ai-machine-learning",
	"dev-blog":      "https://developers.googleblog.com/",
	"medium-ml":     "https://medium.com/feed/google-cloud/tagged/machine-learning",
	"medium-k8s":    "https://medium.com/feed/google-cloud/tagged/kubernetes",
	"medium-appdev": "https://medium.com/feed/google-cloud/tagged/gcp-app-dev",
}

// Lookup resolves a service identifier to a Source.
func Lookup(id string) (Source, bool) {
	url, ok := serviceFeeds[id]
	if !ok {
		return Source{}, false
	}
	return Source{
		ID:          id,
		PrimaryURL:  url,
		FallbackURL: serviceFallbacks[id],
		Kind:        Detect(url),
		TitleOnly:   isTitleOnlyURL(url),
	}, true
}

// Group resolves a group name to the sources of its member services,
// preserving registry order.
func Group(name string) ([]Source, bool) {
	ids, ok := serviceGroups[name]
	if !ok {
		return nil, false
	}
	sources := make([]Source, 0, len(ids))
	for _, id := range ids {
		if src, ok := Lookup(id); ok {
			sources = append(sources, src)
		}
	}
	return sources, true
}

// Groups returns all group names, sorted.
func Groups() []string {
	names := make([]string, 0, len(serviceGroups))
	for name := range serviceGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GroupMembers returns the member service ids of a group.
func GroupMembers(name string) []string {
	members := append([]string(nil), serviceGroups[name]...)
	sort.Strings(members)
	return members
}

// Services returns all service ids, sorted.
func Services() []string {
	ids := make([]string, 0, len(serviceFeeds))
	for id := range serviceFeeds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GroupOf returns the group a service belongs to, or "" if unknown.
func GroupOf(id string) string {
	for group, members := range serviceGroups {
		for _, member := range members {
			if member == id {
				return group
			}
		}
	}
	return ""
}

// Blogs returns the configured blog sources, sorted by id.
func Blogs() []Source {
	ids := make([]string, 0, len(blogURLs))
	for id := range blogURLs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	sources := make([]Source, 0, len(ids))
	for _, id := range ids {
		sources = append(sources, FromURL(id, blogURLs[id]))
	}
	return sources
}
