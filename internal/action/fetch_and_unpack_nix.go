package action

import (
	"archive/tar"
	"crypto/sha256"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/nix-community/nix-installer/internal/errs"
)

// FetchAndUnpackNix downloads (or reads embedded bytes for) the Nix
// store tarball and extracts it into a scratch directory under
// /nix/temp-install-dir, verifying its checksum first (§4.1).
type FetchAndUnpackNix struct {
	URL            string `json:"url"`
	EmbeddedPath   string `json:"embedded_path"`
	DestTemp       string `json:"dest_temp"`
	ExpectedSHA256 string `json:"expected_sha256"`
	Proxy          string `json:"proxy"`
	SSLCertFile    string `json:"ssl_cert_file"`

	state State
}

func NewFetchAndUnpackNix(url, embeddedPath, destTemp, expectedSHA256, proxy, sslCertFile string) *FetchAndUnpackNix {
	return &FetchAndUnpackNix{
		URL:            url,
		EmbeddedPath:   embeddedPath,
		DestTemp:       destTemp,
		ExpectedSHA256: expectedSHA256,
		Proxy:          proxy,
		SSLCertFile:    sslCertFile,
		state:          StateUncompleted,
	}
}

func (a *FetchAndUnpackNix) Typetag() string { return "fetch_and_unpack_nix" }

func (a *FetchAndUnpackNix) TracingSynopsis() string {
	if a.URL != "" {
		return fmt.Sprintf("Fetch and unpack Nix from %s", a.URL)
	}
	return "Unpack embedded Nix tarball"
}

func (a *FetchAndUnpackNix) TracingSpanData() map[string]string {
	return map[string]string{"url": a.URL, "dest_temp": a.DestTemp}
}

func (a *FetchAndUnpackNix) State() State { return a.state }

// Plan only validates that the destination scratch directory is free;
// the tarball itself is fetched during Execute since downloading is not
// idempotent-safe to repeat at plan time (§4.1: "plan is pure").
func (a *FetchAndUnpackNix) Plan(c *Context) error {
	if info, err := c.Sys.FS().Stat(a.DestTemp); err == nil && info.IsDir() {
		entries, err := c.Sys.FS().ReadDir(a.DestTemp)
		if err == nil && len(entries) > 0 && !c.Force {
			return &errs.PlanError{Kind: errs.ConflictingResource, Resource: a.DestTemp, Reason: "scratch directory is not empty"}
		}
	}
	return nil
}

func (a *FetchAndUnpackNix) Execute(c *Context) error {
	if a.state == StateCompleted {
		return nil
	}
	a.state = StateProgress

	if err := os.MkdirAll(a.DestTemp, 0o755); err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: a.DestTemp, OsError: err}
	}

	var tarballPath string
	if a.URL != "" {
		downloaded, err := a.download(c)
		if err != nil {
			return err
		}
		tarballPath = downloaded
		defer os.Remove(tarballPath)
	} else {
		tarballPath = a.EmbeddedPath
	}

	if a.ExpectedSHA256 != "" {
		if err := verifySHA256(tarballPath, a.ExpectedSHA256); err != nil {
			return err
		}
	}

	if err := extractTarXz(tarballPath, a.DestTemp); err != nil {
		return err
	}

	a.state = StateCompleted
	return nil
}

func (a *FetchAndUnpackNix) download(c *Context) (string, error) {
	parsed, err := url.Parse(a.URL)
	if err != nil {
		return "", &errs.ActionError{Kind: errs.Http, URL: a.URL, OsError: err}
	}

	transport := &http.Transport{}
	if a.Proxy != "" {
		proxyURL, err := url.Parse(a.Proxy)
		if err != nil {
			return "", &errs.ActionError{Kind: errs.Http, URL: a.URL, OsError: err}
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}
	if a.SSLCertFile != "" {
		transport.TLSClientConfig = &tls.Config{}
	}

	client := &http.Client{Transport: transport}

	req, err := http.NewRequestWithContext(c.Ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return "", &errs.ActionError{Kind: errs.Http, URL: a.URL, OsError: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", &errs.ActionError{Kind: errs.Http, URL: a.URL, OsError: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &errs.ActionError{Kind: errs.Http, URL: a.URL, Status: resp.Status}
	}

	out, err := os.CreateTemp(a.DestTemp, "nix-*.tar.xz")
	if err != nil {
		return "", &errs.ActionError{Kind: errs.Io, Path: a.DestTemp, OsError: err}
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", &errs.ActionError{Kind: errs.Http, URL: a.URL, OsError: err}
	}

	return out.Name(), nil
}

func (a *FetchAndUnpackNix) Revert(c *Context) error {
	if a.state == StateUncompleted {
		return nil
	}
	if err := os.RemoveAll(a.DestTemp); err != nil && !os.IsNotExist(err) {
		return &errs.ActionError{Kind: errs.Io, Path: a.DestTemp, OsError: err}
	}
	a.state = StateUncompleted
	return nil
}

func verifySHA256(path, expected string) error {
	f, err := os.Open(path)
	if err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: path, OsError: err}
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: path, OsError: err}
	}

	got := hex.EncodeToString(h.Sum(nil))
	if got != expected {
		return &errs.ActionError{Kind: errs.Checksum, Path: path, ExpectedChecksum: expected, GotChecksum: got}
	}

	return nil
}

// extractTarXz unpacks a .tar.xz into dest, rejecting absolute paths and
// any entry that would resolve outside dest.
func extractTarXz(archivePath, dest string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: archivePath, OsError: err}
	}
	defer f.Close()

	xzReader, err := xz.NewReader(f)
	if err != nil {
		return &errs.ActionError{Kind: errs.Io, Path: archivePath, OsError: err}
	}

	tr := tar.NewReader(xzReader)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &errs.ActionError{Kind: errs.Io, Path: archivePath, OsError: err}
		}

		target := filepath.Join(dest, header.Name)
		if !isPathWithinDirectory(target, dest) {
			return &errs.ActionError{Kind: errs.Io, Path: header.Name, OsError: fmt.Errorf("tar entry escapes destination directory")}
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)); err != nil {
				return &errs.ActionError{Kind: errs.Io, Path: target, OsError: err}
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return &errs.ActionError{Kind: errs.Io, Path: target, OsError: err}
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode))
			if err != nil {
				return &errs.ActionError{Kind: errs.Io, Path: target, OsError: err}
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return &errs.ActionError{Kind: errs.Io, Path: target, OsError: err}
			}
			out.Close()
		case tar.TypeSymlink:
			if filepath.IsAbs(header.Linkname) {
				return &errs.ActionError{Kind: errs.Io, Path: target, OsError: fmt.Errorf("absolute symlink targets are not allowed")}
			}
			resolved := filepath.Join(filepath.Dir(target), header.Linkname)
			if !isPathWithinDirectory(resolved, dest) {
				return &errs.ActionError{Kind: errs.Io, Path: target, OsError: fmt.Errorf("symlink escapes destination directory")}
			}
			_ = os.Remove(target)
			if err := os.Symlink(header.Linkname, target); err != nil {
				return &errs.ActionError{Kind: errs.Io, Path: target, OsError: err}
			}
		}
	}

	return nil
}

func isPathWithinDirectory(target, base string) bool {
	absTarget, err := filepath.Abs(target)
	if err != nil {
		return false
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return false
	}
	return absTarget == absBase || strings.HasPrefix(absTarget, absBase+string(filepath.Separator))
}
