package post

import (
	"slices"
	"testing"
)

func envFrom(vars map[string]string) EnvFunc {
	return func(name string) string {
		return vars[name]
	}
}

func TestNetwork_EnabledByEitherTwitterGroup(t *testing.T) {
	twitter := Networks[0]
	if twitter.Name != "twitter" {
		t.Fatalf("Expected twitter first in the registry, got %s", twitter.Name)
	}

	tokenEnv := envFrom(map[string]string{
		"TWITTER_ACCESS_TOKEN_KEY":    "k",
		"TWITTER_ACCESS_TOKEN_SECRET": "s",
	})
	if !twitter.Enabled(tokenEnv) {
		t.Error("Access token pair should enable twitter")
	}

	consumerEnv := envFrom(map[string]string{
		"TWITTER_API_CONSUMER_KEY":    "k",
		"TWITTER_API_CONSUMER_SECRET": "s",
	})
	if !twitter.Enabled(consumerEnv) {
		t.Error("Consumer key pair should enable twitter")
	}

	partialEnv := envFrom(map[string]string{
		"TWITTER_ACCESS_TOKEN_KEY": "k",
	})
	if twitter.Enabled(partialEnv) {
		t.Error("Incomplete credential group should not enable twitter")
	}
}

func TestNetwork_InputPrefixedCredentials(t *testing.T) {
	env := envFrom(map[string]string{
		"INPUT_MASTODON_HOST":         "https://mastodon.example",
		"INPUT_MASTODON_ACCESS_TOKEN": "token",
	})

	var mastodon Network
	for _, n := range Networks {
		if n.Name == "mastodon" {
			mastodon = n
		}
	}

	if !mastodon.Enabled(env) {
		t.Fatal("INPUT_-prefixed credentials should enable the network")
	}

	// The child process receives bare variable names
	childEnv := mastodon.Env(env)
	if !slices.Contains(childEnv, "MASTODON_HOST=https://mastodon.example") {
		t.Errorf("Child env missing bare MASTODON_HOST, got %v", childEnv)
	}
	if !slices.Contains(childEnv, "MASTODON_ACCESS_TOKEN=token") {
		t.Errorf("Child env missing bare MASTODON_ACCESS_TOKEN, got %v", childEnv)
	}
}

func TestEnabledNetworks(t *testing.T) {
	env := envFrom(map[string]string{
		"DEVTO_API_KEY":      "key",
		"TELEGRAM_BOT_TOKEN": "token",
		"TELEGRAM_CHAT_ID":   "chat",
	})

	enabled := EnabledNetworks(env)

	names := make([]string, 0, len(enabled))
	for _, n := range enabled {
		names = append(names, n.Name)
	}

	if !slices.Equal(names, []string{"devto", "telegram"}) {
		t.Errorf("Expected [devto telegram], got %v", names)
	}
}

func TestEnabledNetworks_None(t *testing.T) {
	if got := EnabledNetworks(envFrom(nil)); len(got) != 0 {
		t.Errorf("Expected no enabled networks, got %v", got)
	}
}
