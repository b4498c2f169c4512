// Copyright 2022 Drone.IO Inc. All rights reserved.
// Use of this source code is governed by the Polyform License
// that can be found in the LICENSE file.

// Package redact masks secrets out of the tap's and target's stderr before
// it reaches a log sink. Plugin configs are written to temp files specifically
// so they stay off the process table (spec.md §9), but a misbehaving tap or
// target can still echo a config value — a literal secret, an API key, a
// connection string — to stderr. This package catches both the secrets the
// caller told us about (PluginSpec config string values) and generic
// known-shape tokens (JWTs, Bearer/Basic auth headers, VCS personal access
// tokens) that show up in stderr regardless of whether the caller named them.
//
// The variant-generation and pattern sets are adapted down from
// logstream/replacer.go and logstream/sanitizer_helper.go: the teacher builds
// these for a remote log-shipping Writer pipeline, this package only needs a
// plain string-masking entry point, since runner.Run already hands it one
// captured line at a time.
package redact

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

const maskedStr = "**************"

const minSecretLength = 2

// MaskString masks secrets (and generic known-shape tokens) in a single
// captured line before it reaches a log sink.
func MaskString(input string, secrets []string) string {
	if len(secrets) == 0 {
		return maskTokens(input)
	}
	return maskTokens(buildReplacer(secrets).Replace(input))
}

func buildReplacer(secrets []string) *strings.Replacer {
	var oldnew []string
	seen := map[string]bool{}

	for _, secret := range secrets {
		for _, part := range strings.Split(secret, "\n") {
			part = strings.TrimSpace(part)
			if len(part) < minSecretLength {
				continue
			}
			for _, variant := range secretVariants(part) {
				if !seen[variant] && len(variant) > minSecretLength {
					seen[variant] = true
					oldnew = append(oldnew, variant, maskedStr)
				}
			}
		}
	}

	if len(oldnew) == 0 {
		// strings.NewReplacer requires at least nothing; return a no-op pair.
		return strings.NewReplacer()
	}
	return strings.NewReplacer(oldnew...)
}

// secretVariants generates forms of original that might appear in shell or
// JSON output even after the secret has been quoted, escaped, or encoded.
func secretVariants(original string) []string {
	variants := []string{original}
	if len(original) <= minSecretLength {
		return variants
	}
	seen := map[string]bool{original: true}

	add := func(v string) {
		if !seen[v] && len(v) > minSecretLength {
			seen[v] = true
			variants = append(variants, v)
		}
	}

	if strings.Contains(original, "\"") {
		add(strings.ReplaceAll(original, "\"", ""))
	}
	if strings.Contains(original, "'") {
		add(strings.ReplaceAll(original, "'", ""))
	}
	add(url.QueryEscape(original))
	add(strings.ReplaceAll(url.QueryEscape(original), "+", "%20"))
	add(url.PathEscape(original))

	return variants
}

var (
	jwtPattern    = regexp.MustCompile(`[\w-]+\.[\w-]+\.[\w-]+`)
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9_\-.]+`)
	basicPattern  = regexp.MustCompile(`Basic\s+[A-Za-z0-9_\-.+/=]+`)

	tokenPatterns = []*regexp.Regexp{
		regexp.MustCompile(`ghp_[a-zA-Z0-9]{1,50}`),             // GitHub PAT
		regexp.MustCompile(`github_pat_[a-zA-Z0-9_]+`),          // GitHub fine-grained PAT
		regexp.MustCompile(`glpat-[A-Za-z0-9\-_]{20}`),          // GitLab PAT
		regexp.MustCompile(`T[a-zA-Z0-9_]{8}/B[a-zA-Z0-9_]{8,10}/[a-zA-Z0-9_]{24}`), // Slack webhook
	}
)

// maskTokens masks generic known-shape secrets: JWTs, Bearer/Basic auth
// headers, and common VCS personal-access-token formats.
func maskTokens(message string) string {
	if message == "" {
		return message
	}

	for _, match := range jwtPattern.FindAllString(message, -1) {
		if isValidJWT(match) {
			message = strings.ReplaceAll(message, match, maskedStr)
		}
	}

	message = bearerPattern.ReplaceAllString(message, "Bearer "+maskedStr)
	message = basicPattern.ReplaceAllString(message, "Basic "+maskedStr)

	for _, pattern := range tokenPatterns {
		message = pattern.ReplaceAllString(message, maskedStr)
	}

	return message
}

func isValidJWT(token string) bool {
	parser := jwt.Parser{SkipClaimsValidation: true}
	_, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	return err == nil
}
