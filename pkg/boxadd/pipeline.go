package boxadd

import (
	"context"
	"crypto/sha1" //nolint:gosec // identity hash for a temp filename, not a security boundary
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cperrin88/boxkeep/pkg/boxchecksum"
	"github.com/cperrin88/boxkeep/pkg/boxdownload"
	"github.com/cperrin88/boxkeep/pkg/boxerrors"
	"github.com/cperrin88/boxkeep/pkg/boxhook"
	"github.com/cperrin88/boxkeep/pkg/boxlock"
	"github.com/cperrin88/boxkeep/pkg/boxmeta"
	"github.com/cperrin88/boxkeep/pkg/boxplatform"
	"github.com/cperrin88/boxkeep/pkg/boxselect"
	"github.com/cperrin88/boxkeep/pkg/boxurl"
	"github.com/cperrin88/boxkeep/pkg/fsutil"
)

// classifyPrefixLimit bounds how much of a downloaded payload the pipeline
// reads into memory to sniff whether it's a metadata document. Box metadata
// documents are small JSON files; anything larger that still parses as
// JSON is vanishingly unlikely to be a legitimate archive misclassified.
const classifyPrefixLimit = 1 << 20

// Event is a progress notification the pipeline emits as it advances
// through the state machine.
type Event struct {
	Phase string // classify|fetch_metadata|select|fetch_archive|verify|add|done
	Msg   string
}

// Hooks carries an optional progress-notification callback.
type Hooks struct {
	OnEvent func(Event)
}

func (h Hooks) emit(phase, msg string) {
	if h.OnEvent != nil {
		h.OnEvent(Event{Phase: phase, Msg: scrubLine(msg)})
	}
}

// scrubLine masks credentials embedded in any URL-shaped token of msg
// before an event reaches a log or the console. A hook's AuthenticateURLs
// can rewrite a candidate to carry a signed query string or embedded
// basic-auth, and every emission that might echo that rewritten URL needs
// the same treatment boxui.ConsoleUI already gives its own output.
func scrubLine(msg string) string {
	fields := strings.Fields(msg)
	for i, field := range fields {
		trimmed := strings.TrimSuffix(field, ",")
		if strings.Contains(trimmed, "://") {
			fields[i] = boxurl.Scrub(trimmed) + strings.TrimPrefix(field, trimmed)
		}
	}
	return strings.Join(fields, " ")
}

// Pipeline drives one box-add invocation.
type Pipeline struct {
	Factory *boxdownload.Factory
	Hooks   Hooks
}

// NewPipeline returns a Pipeline with a default Downloader Factory.
func NewPipeline() *Pipeline {
	return &Pipeline{Factory: boxdownload.NewFactory()}
}

// Add runs the full state machine against env, mutating env.BoxAdded on
// success.
func (p *Pipeline) Add(ctx context.Context, env *Env) error {
	if len(env.URLs) == 0 {
		return fmt.Errorf("box-add requires at least one URL or a short-hand reference")
	}

	if env.UI != nil && strings.Contains(env.Name, "://") {
		env.UI.Warn("box name " + env.Name + " looks like a URL")
	}

	hook := env.Hook
	if hook == nil {
		hook = boxhook.NoopHook{}
	}

	tmpDir, err := p.resolveTmpDir(env)
	if err != nil {
		return err
	}

	if len(env.URLs) == 1 && boxurl.IsShortHand(env.URLs[0]) {
		return p.addShortHand(ctx, env, hook, tmpDir, env.URLs[0])
	}
	if len(env.URLs) > 1 {
		return p.addDirectMultiURL(ctx, env, hook, tmpDir, env.URLs)
	}
	return p.addSingleURL(ctx, env, hook, tmpDir, env.URLs[0])
}

func (p *Pipeline) resolveTmpDir(env *Env) (string, error) {
	if env.TmpPath != "" {
		return env.TmpPath, fsutil.EnsureDir(env.TmpPath)
	}
	dir, err := fsutil.GetTmpDir()
	if err != nil {
		return "", err
	}
	return dir, fsutil.EnsureDir(dir)
}

func (p *Pipeline) buildDownloadOptions(env *Env) boxdownload.Options {
	return boxdownload.Options{
		CACert:                     env.DownloadCACert,
		CAPath:                     env.DownloadCAPath,
		Insecure:                   env.DownloadInsecure,
		ClientCert:                 env.DownloadClientCert,
		LocationTrusted:            env.DownloadLocationTrusted,
		DisableSSLRevokeBestEffort: env.DownloadDisableSSLRevokeBestEffort,
	}
}

// addShortHand expands a "owner/name" reference into candidate metadata
// URLs (the API endpoint first, the plain short-hand URL second) and
// proceeds through the metadata flow.
func (p *Pipeline) addShortHand(ctx context.Context, env *Env, hook boxhook.Hook, tmpDir, ref string) error {
	serverURL := env.ServerURL
	if serverURL == "" {
		serverURL = os.Getenv("VAGRANT_SERVER_URL")
	}
	if serverURL == "" {
		return boxerrors.New(boxerrors.KindBoxServerNotSet, "no server URL configured for short-hand box reference "+ref)
	}
	serverURL = strings.TrimRight(serverURL, "/")

	candidates := []string{serverURL + "/api/v2/vagrant/" + ref, serverURL + "/" + ref}

	p.Hooks.emit("classify", "expanding short-hand "+ref)

	result, err := p.fetchMetadataCandidates(ctx, env, hook, tmpDir, candidates, nil)
	if err != nil {
		return boxerrors.Wrap(boxerrors.KindBoxAddShortNotFound, "no metadata found for short-hand reference "+ref, err)
	}

	return p.finishMetadataFlow(ctx, env, hook, tmpDir, result, ref)
}

// addSingleURL handles the case of one URL which may resolve to either a
// metadata document or a raw archive.
func (p *Pipeline) addSingleURL(ctx context.Context, env *Env, hook boxhook.Hook, tmpDir, rawURL string) error {
	normalized, err := boxurl.Normalize(rawURL)
	if err != nil {
		return err
	}

	result, err := p.fetchMetadataCandidates(ctx, env, hook, tmpDir, []string{normalized}, func(path string) error {
		return p.verifyChecksum(path, env.ChecksumType, env.Checksum)
	})
	if err != nil {
		return err
	}

	if result.isMetadata {
		return p.finishMetadataFlow(ctx, env, hook, tmpDir, result, rawURL)
	}
	return p.finishDirectFlow(env, result.path)
}

// addDirectMultiURL handles a fallback list of URLs that must all resolve
// to archives; if the one that ends up succeeding is metadata, that is a
// misuse (metadata may not be combined with a fallback list).
func (p *Pipeline) addDirectMultiURL(ctx context.Context, env *Env, hook boxhook.Hook, tmpDir string, rawURLs []string) error {
	normalized := make([]string, len(rawURLs))
	for i, u := range rawURLs {
		n, err := boxurl.Normalize(u)
		if err != nil {
			return err
		}
		normalized[i] = n
	}

	result, err := p.fetchMetadataCandidates(ctx, env, hook, tmpDir, normalized, func(path string) error {
		return p.verifyChecksum(path, env.ChecksumType, env.Checksum)
	})
	if err != nil {
		return err
	}
	if result.isMetadata {
		return boxerrors.New(boxerrors.KindBoxAddMetadataMultiURL, "a multi-URL box-add resolved to a metadata document")
	}
	return p.finishDirectFlow(env, result.path)
}

type fetchResult struct {
	path       string
	isMetadata bool
}

// candidateURL pairs a canonical URL (used as the lock key and the temp
// destination seed, per spec) with the hook-rewritten URL actually fetched.
type candidateURL struct {
	canonical string
	rewritten string
}

func zipCandidates(canonical, rewritten []string) []candidateURL {
	out := make([]candidateURL, len(canonical))
	for i, c := range canonical {
		rw := c
		if i < len(rewritten) {
			rw = rewritten[i]
		}
		out[i] = candidateURL{canonical: c, rewritten: rw}
	}
	return out
}

// fetchMetadataCandidates locks, downloads (with hook-driven URL rewriting
// and per-candidate fallback) and classifies a payload. If the payload
// turns out not to be metadata and verifyDirect is set, verifyDirect runs
// inside the same lock span that protected the download.
func (p *Pipeline) fetchMetadataCandidates(ctx context.Context, env *Env, hook boxhook.Hook, tmpDir string, candidates []string, verifyDirect func(path string) error) (*fetchResult, error) {
	rewritten, err := hook.AuthenticateURLs(candidates)
	if err != nil {
		return nil, err
	}

	p.Hooks.emit("fetch_metadata", strings.Join(rewritten, " "))

	destPath := tempDestPath(tmpDir, candidates[0])

	var fr fetchResult
	res, err := p.fetchWithLock(ctx, env, hook, tmpDir, zipCandidates(candidates, rewritten), destPath, func(result *boxdownload.Result) error {
		prefix, perr := peekFile(result.Path, classifyPrefixLimit)
		if perr != nil {
			return fmt.Errorf("reading %s for classification: %w", result.Path, perr)
		}
		fr.isMetadata = boxmeta.IsMetadata(result.ContentType, prefix)
		if !fr.isMetadata && verifyDirect != nil {
			return verifyDirect(result.Path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	fr.path = res.Path
	return &fr, nil
}

// fetchWithLock serializes each candidate download attempt behind its own
// non-blocking mutex-file lock keyed on the candidate's canonical URL,
// falling back to the next candidate on any transport or verify failure.
// The lock is held across the download and verify, and released on every
// path before the next candidate (or the caller) proceeds.
func (p *Pipeline) fetchWithLock(ctx context.Context, env *Env, hook boxhook.Hook, tmpDir string, candidates []candidateURL, destPath string, verify func(*boxdownload.Result) error) (*boxdownload.Result, error) {
	var lastErr error
	for _, c := range candidates {
		lock, err := boxlock.Acquire(tmpDir, c.canonical)
		if err != nil {
			return nil, err
		}

		result, ferr := p.fetchOne(ctx, env, hook, c.rewritten, destPath, verify)

		if relErr := lock.Release(); relErr != nil && ferr == nil {
			ferr = relErr
		}

		if ferr == nil {
			return result, nil
		}
		lastErr = ferr
	}

	// A verify callback (classification, checksum) may already carry its own
	// Kind (e.g. BoxChecksumMismatch); only genuine transport failures get
	// folded into DownloaderError.
	if _, ok := boxerrors.GetKind(lastErr); ok {
		return nil, lastErr
	}
	return nil, boxerrors.Wrap(boxerrors.KindDownloaderError, "all candidate URLs failed", lastErr)
}

// fetchOne authenticates a downloader freshly for this attempt, fetches
// url, and runs verify (if set) while the caller's lock is still held.
func (p *Pipeline) fetchOne(ctx context.Context, env *Env, hook boxhook.Hook, url, destPath string, verify func(*boxdownload.Result) error) (*boxdownload.Result, error) {
	downloadOpts, err := hook.AuthenticateDownloader(p.buildDownloadOptions(env))
	if err != nil {
		return nil, err
	}
	dl, err := p.Factory.Build(downloadOpts)
	if err != nil {
		return nil, err
	}

	result, err := dl.Fetch(ctx, []string{url}, destPath)
	if err != nil {
		return nil, err
	}
	if verify != nil {
		if err := verify(result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// finishMetadataFlow parses the metadata document, selects a candidate
// provider, fetches its archive, verifies its checksum and hands off to
// the collection.
func (p *Pipeline) finishMetadataFlow(ctx context.Context, env *Env, hook boxhook.Hook, tmpDir string, result *fetchResult, metadataURL string) error {
	full, err := os.ReadFile(result.path)
	if err != nil {
		return fmt.Errorf("reading metadata document: %w", err)
	}

	doc, err := boxmeta.Parse(full)
	if err != nil {
		return boxerrors.Wrap(boxerrors.KindBoxMetadataDownloadError, "malformed box metadata", err)
	}

	if env.Name != "" && env.Name != doc.Name {
		return boxerrors.New(boxerrors.KindBoxAddNameMismatch, fmt.Sprintf("requested name %q does not match metadata name %q", env.Name, doc.Name))
	}

	p.Hooks.emit("select", "selecting candidate provider")
	candidate, err := boxselect.Select(doc, boxselect.Request{
		VersionConstraint: env.VersionConstraint,
		Providers:         env.Provider,
		Architecture:      env.Architecture,
	}, env.UI)
	if err != nil {
		return err
	}

	if err := p.checkAlreadyExists(env, candidate.Version, candidate.Architecture); err != nil {
		return err
	}

	archiveURL, err := boxurl.Normalize(candidate.Provider.URL)
	if err != nil {
		return err
	}

	p.Hooks.emit("fetch_archive", archiveURL)
	rewritten, err := hook.AuthenticateURLs([]string{archiveURL})
	if err != nil {
		return err
	}

	checksumType := candidate.Provider.ChecksumType
	checksum := candidate.Provider.Checksum
	if env.Checksum != "" {
		checksum = env.Checksum
		checksumType = env.ChecksumType
	}

	destPath := tempDestPath(tmpDir, archiveURL)
	archiveResult, err := p.fetchWithLock(ctx, env, hook, tmpDir, zipCandidates([]string{archiveURL}, rewritten), destPath, func(result *boxdownload.Result) error {
		return p.verifyChecksum(result.Path, checksumType, checksum)
	})
	if err != nil {
		return err
	}

	box, err := p.addToCollection(env, archiveResult.Path, doc.Name, candidate.Version, AddOptions{
		Architecture: candidate.Architecture,
		MetadataURL:  metadataURL,
		Force:        env.Force,
		Providers:    []string{candidate.Provider.Name},
	})
	if err != nil {
		return err
	}

	env.BoxAdded = box
	p.Hooks.emit("done", doc.Name)
	return nil
}

// finishDirectFlow hands off an archive that was fetched directly (no
// metadata indirection); its checksum was already verified inside the
// fetch lock span by fetchMetadataCandidates's verifyDirect callback.
// Version is always "0" and the requested name is mandatory.
func (p *Pipeline) finishDirectFlow(env *Env, archivePath string) error {
	if env.Name == "" {
		return boxerrors.New(boxerrors.KindBoxAddNameRequired, "box-add of a direct archive requires a name")
	}
	if env.VersionConstraint != "" {
		return boxerrors.New(boxerrors.KindBoxAddDirectVersion, "box-add of a direct archive does not accept a version constraint")
	}

	architecture := env.Architecture
	if architecture == boxplatform.AUTO {
		architecture = boxplatform.HostArchitecture()
	}

	if err := p.checkAlreadyExists(env, "0", architecture); err != nil {
		return err
	}

	box, err := p.addToCollection(env, archivePath, env.Name, "0", AddOptions{
		Architecture: architecture,
		Force:        env.Force,
		Providers:    env.Provider,
	})
	if err != nil {
		return err
	}

	env.BoxAdded = box
	p.Hooks.emit("done", env.Name)
	return nil
}

func (p *Pipeline) checkAlreadyExists(env *Env, version, architecture string) error {
	if env.Collection == nil {
		return nil
	}
	existing, err := env.Collection.Find(env.Name, env.Provider, version, architecture)
	if err != nil {
		return err
	}
	if existing != nil && !env.Force {
		return boxerrors.New(boxerrors.KindBoxAlreadyExists, fmt.Sprintf("box %s already exists in the collection", env.Name))
	}
	return nil
}

func (p *Pipeline) verifyChecksum(path, checksumType, checksum string) error {
	checksum = strings.TrimSpace(checksum)
	if checksum == "" {
		return nil
	}
	p.Hooks.emit("verify", path)
	if checksumType == "" {
		checksumType = "sha256"
	}
	return boxchecksum.Verify(path, checksumType, checksum)
}

func (p *Pipeline) addToCollection(env *Env, path, name, version string, opts AddOptions) (*Box, error) {
	if env.Collection == nil {
		return &Box{Name: name, Version: version, Path: path, Architecture: opts.Architecture, MetadataURL: opts.MetadataURL}, nil
	}
	p.Hooks.emit("add", name+"@"+version)
	return env.Collection.Add(path, name, version, opts)
}

// tempDestPath derives a temp download destination from the canonical URL
// being fetched, scoped to tmpDir.
func tempDestPath(tmpDir, url string) string {
	sum := sha1.Sum([]byte(url))
	return filepath.Join(tmpDir, "fetch-"+hex.EncodeToString(sum[:]))
}

func peekFile(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}
