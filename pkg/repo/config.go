package repo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/ini.v1"
)

// The config file is git-style INI: a plain [core] section plus
// subsectioned [remote "name"] / [branch "name"] sections.

func (r *Repo) configPath() string {
	return filepath.Join(r.GitletDir, "config")
}

func remoteSection(name string) string {
	return fmt.Sprintf("remote %q", name)
}

func branchSection(name string) string {
	return fmt.Sprintf("branch %q", name)
}

// loadConfig reads the config file. A missing file loads as empty.
func (r *Repo) loadConfig() (*ini.File, error) {
	cfg, err := ini.Load(r.configPath())
	if err != nil {
		if os.IsNotExist(err) {
			return ini.Empty(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// saveConfig atomically rewrites the config file.
func (r *Repo) saveConfig(cfg *ini.File) error {
	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return fmt.Errorf("write config: marshal: %w", err)
	}

	tmp, err := os.CreateTemp(r.GitletDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}

// writeCoreConfig writes the initial config carrying core.bare.
func (r *Repo) writeCoreConfig(bare bool) error {
	cfg := ini.Empty()
	cfg.Section("core").Key("bare").SetValue(fmt.Sprintf("%v", bare))
	return r.saveConfig(cfg)
}

// readBareFlag reports core.bare from a config file path, false when the
// file is absent or malformed.
func readBareFlag(path string) bool {
	cfg, err := ini.Load(path)
	if err != nil {
		return false
	}
	bare, err := cfg.Section("core").Key("bare").Bool()
	return err == nil && bare
}

// SetRemote records a named remote URL. A duplicate name is an error.
func (r *Repo) SetRemote(name, remoteURL string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("set remote: remote name is required")
	}
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return fmt.Errorf("set remote: remote URL is required")
	}

	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}
	if _, err := cfg.GetSection(remoteSection(name)); err == nil {
		return fmt.Errorf("set remote: remote %q already exists", name)
	}
	cfg.Section(remoteSection(name)).Key("url").SetValue(remoteURL)
	return r.saveConfig(cfg)
}

// RemoteURL returns the configured URL for the given remote name.
func (r *Repo) RemoteURL(name string) (string, error) {
	cfg, err := r.loadConfig()
	if err != nil {
		return "", err
	}
	sec, err := cfg.GetSection(remoteSection(name))
	if err != nil {
		return "", fmt.Errorf("remote %q is not configured", name)
	}
	url := strings.TrimSpace(sec.Key("url").String())
	if url == "" {
		return "", fmt.Errorf("remote %q is not configured", name)
	}
	return url, nil
}

// Remotes returns every configured remote as name → URL.
func (r *Repo) Remotes() (map[string]string, error) {
	cfg, err := r.loadConfig()
	if err != nil {
		return nil, err
	}
	remotes := make(map[string]string)
	for _, sec := range cfg.Sections() {
		rest, ok := strings.CutPrefix(sec.Name(), "remote ")
		if !ok {
			continue
		}
		name := strings.Trim(rest, `"`)
		if name == "" {
			continue
		}
		remotes[name] = sec.Key("url").String()
	}
	return remotes, nil
}

// RemoteNames returns the configured remote names, sorted.
func (r *Repo) RemoteNames() ([]string, error) {
	remotes, err := r.Remotes()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(remotes))
	for name := range remotes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// SetBranchUpstream records "<remote>/<branch>" as the upstream of a
// local branch under branch.<name>.remote.
func (r *Repo) SetBranchUpstream(branch, upstream string) error {
	cfg, err := r.loadConfig()
	if err != nil {
		return err
	}
	cfg.Section(branchSection(branch)).Key("remote").SetValue(upstream)
	return r.saveConfig(cfg)
}

// BranchUpstream returns the recorded upstream of a branch, "" when none.
func (r *Repo) BranchUpstream(branch string) (string, error) {
	cfg, err := r.loadConfig()
	if err != nil {
		return "", err
	}
	sec, err := cfg.GetSection(branchSection(branch))
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(sec.Key("remote").String()), nil
}
