/*
Copyright © 2024 paul <paul@denknerd.org>
*/

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"

	"github.com/google/shlex"
	"github.com/toothbrush/metadata-dump/salesforce"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"
)

const cassetteName = "fixtures/metadata-dump"

// tokenCommand returns the argv for --auth-token-cmd.  A single word with spaces in it, as you'd
// write it in YAML, is split like a shell would.
func tokenCommand(argv []string) ([]string, error) {
	if len(argv) == 1 && strings.ContainsAny(argv[0], " \t") {
		split, err := shlex.Split(argv[0])
		if err != nil {
			return nil, fmt.Errorf("session: couldn't split auth-token-cmd %q: %w", argv[0], err)
		}
		argv = split
	}
	if len(argv) < 1 || argv[0] == "" {
		return nil, fmt.Errorf("session: please provide --auth-token-cmd")
	}
	return argv, nil
}

func fetchToken(ctx context.Context) (string, error) {
	argv, err := tokenCommand(AuthTokenCmd)
	if err != nil {
		return "", err
	}

	c := exec.CommandContext(ctx, argv[0], argv[1:]...)
	c.Env = append(os.Environ(), "METADATA_DUMP_ORG="+Org)
	c.Stderr = os.Stderr
	tokenCmdOutput, err := c.Output()
	if err != nil {
		return "", fmt.Errorf("session: couldn't execute auth-token-cmd '%v': %w", argv, err)
	}

	token := strings.TrimSpace(strings.Split(string(tokenCmdOutput), "\n")[0])
	if token == "" {
		return "", fmt.Errorf("session: auth-token-cmd '%v' printed no token", argv)
	}
	return token, nil
}

// newAPI logs in.  The returned stop function must be called when done, it flushes the go-vcr
// cassette when --with-vcr is on.
func newAPI(ctx context.Context) (*salesforce.API, func() error, error) {
	if InstanceURL == "" {
		return nil, nil, fmt.Errorf("session: no org to talk to, use --instance-url, --org or set instance-url in your config file")
	}

	token, err := fetchToken(ctx)
	if err != nil {
		return nil, nil, err
	}

	api, err := salesforce.NewAPI(InstanceURL, token, APIVersion)
	if err != nil {
		return nil, nil, fmt.Errorf("session: couldn't instantiate Salesforce API: %w", err)
	}

	stop := func() error { return nil }
	if WithVCR {
		rec, err := salesforce.NewRecorder(cassetteName, recorder.ModeReplayWithNewEpisodes, http.DefaultTransport)
		if err != nil {
			return nil, nil, fmt.Errorf("session: %w", err)
		}
		debugLog("Recording to %s.yaml.\n", cassetteName)
		api.Client = rec.GetDefaultClient()
		stop = rec.Stop
	}

	user, err := api.CurrentUser(ctx)
	if err != nil {
		_ = stop()
		return nil, nil, fmt.Errorf("session: couldn't query current user: %w", err)
	}
	logger.Info("logged in", "user", user.PreferredUsername, "name", user.Name, "org", user.OrganizationID)

	return api, stop, nil
}
