package post

// EnvFunc abstracts environment lookup so network detection is testable.
// os.Getenv satisfies it.
type EnvFunc func(string) string

// Network describes one crosspost destination. A network is enabled when
// any one of its credential groups is completely present in the
// environment, either under the bare variable name or the INPUT_-prefixed
// action input form. The child process always receives the bare names.
type Network struct {
	Name             string
	Flag             string
	CredentialGroups [][]string
}

// The registry mirrors the networks supported by the crosspost CLI. Adding
// a network is a table entry, not a code path.
var Networks = []Network{
	{
		Name: "twitter",
		Flag: "--twitter",
		CredentialGroups: [][]string{
			{"TWITTER_ACCESS_TOKEN_KEY", "TWITTER_ACCESS_TOKEN_SECRET"},
			{"TWITTER_API_CONSUMER_KEY", "TWITTER_API_CONSUMER_SECRET"},
		},
	},
	{
		Name: "mastodon",
		Flag: "--mastodon",
		CredentialGroups: [][]string{
			{"MASTODON_HOST", "MASTODON_ACCESS_TOKEN"},
		},
	},
	{
		Name: "bluesky",
		Flag: "--bluesky",
		CredentialGroups: [][]string{
			{"BLUESKY_HOST", "BLUESKY_IDENTIFIER", "BLUESKY_PASSWORD"},
		},
	},
	{
		Name: "linkedin",
		Flag: "--linkedin",
		CredentialGroups: [][]string{
			{"LINKEDIN_ACCESS_TOKEN"},
		},
	},
	{
		Name: "discord",
		Flag: "--discord",
		CredentialGroups: [][]string{
			{"DISCORD_BOT_TOKEN", "DISCORD_CHANNEL_ID"},
		},
	},
	{
		Name: "discord-webhook",
		Flag: "--discord-webhook",
		CredentialGroups: [][]string{
			{"DISCORD_WEBHOOK_URL"},
		},
	},
	{
		Name: "devto",
		Flag: "--devto",
		CredentialGroups: [][]string{
			{"DEVTO_API_KEY"},
		},
	},
	{
		Name: "telegram",
		Flag: "--telegram",
		CredentialGroups: [][]string{
			{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID"},
		},
	},
	{
		Name: "slack",
		Flag: "--slack",
		CredentialGroups: [][]string{
			{"SLACK_TOKEN", "SLACK_CHANNEL"},
		},
	},
}

func lookupCredential(env EnvFunc, name string) string {
	if v := env("INPUT_" + name); v != "" {
		return v
	}
	return env(name)
}

func (n Network) Enabled(env EnvFunc) bool {
	for _, group := range n.CredentialGroups {
		complete := true
		for _, name := range group {
			if lookupCredential(env, name) == "" {
				complete = false
				break
			}
		}
		if complete {
			return true
		}
	}
	return false
}

// Env returns KEY=value pairs for the child process, mapping action inputs
// back to the bare variable names the crosspost CLI expects.
func (n Network) Env(env EnvFunc) []string {
	var out []string
	for _, group := range n.CredentialGroups {
		for _, name := range group {
			if v := lookupCredential(env, name); v != "" {
				out = append(out, name+"="+v)
			}
		}
	}
	return out
}

func EnabledNetworks(env EnvFunc) []Network {
	var enabled []Network
	for _, network := range Networks {
		if network.Enabled(env) {
			enabled = append(enabled, network)
		}
	}
	return enabled
}
