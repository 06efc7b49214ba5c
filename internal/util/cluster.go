package util

import (
	"net/url"
	"strings"
)

// ShortClusterName derives a display label from a cluster URL.
// AWS OpenSearch Service endpoints have the form
// https://search-<domain>-<hash>.<region>.es.amazonaws.com (or vpc-<domain>-<hash>)
// and are shortened to <domain>. Other URLs become host:port.
func ShortClusterName(rawURL string) string {
	if rawURL == "" {
		return ""
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		u, err = url.Parse("http://" + rawURL)
		if err != nil || u.Host == "" {
			return rawURL
		}
	}

	host := u.Hostname()
	if strings.HasSuffix(host, ".es.amazonaws.com") || strings.HasSuffix(host, ".aoss.amazonaws.com") {
		label := host[:strings.Index(host, ".")]
		for _, prefix := range []string{"search-", "vpc-"} {
			label = strings.TrimPrefix(label, prefix)
		}
		// Drop the trailing generated hash segment
		if idx := strings.LastIndex(label, "-"); idx > 0 {
			label = label[:idx]
		}
		return label
	}

	return u.Host
}
