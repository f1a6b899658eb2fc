package boxdownload

import (
	"context"
	"fmt"
	"net"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
)

// fetchFTP implements a minimal passive-mode FTP RETR client on
// net/textproto. No FTP client library exists anywhere in the retrieval
// pack this module was grounded on, so this is the one component built
// directly on the standard library (see DESIGN.md).
func (d *Downloader) fetchFTP(ctx context.Context, parsed *url.URL, destPath string) (*Result, error) {
	host := parsed.Host
	if !strings.Contains(host, ":") {
		host += ":21"
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", host, err)
	}
	defer conn.Close()

	text := textproto.NewConn(conn)

	if _, _, err := text.ReadResponse(220); err != nil {
		return nil, fmt.Errorf("ftp greeting: %w", err)
	}

	user, pass := "anonymous", "anonymous@"
	if parsed.User != nil {
		user = parsed.User.Username()
		if p, ok := parsed.User.Password(); ok {
			pass = p
		}
	}

	if err := text.PrintfLine("USER %s", user); err != nil {
		return nil, fmt.Errorf("sending USER: %w", err)
	}
	if _, _, err := text.ReadResponse(0); err != nil {
		return nil, fmt.Errorf("USER response: %w", err)
	}
	if err := text.PrintfLine("PASS %s", pass); err != nil {
		return nil, fmt.Errorf("sending PASS: %w", err)
	}
	if _, _, err := text.ReadResponse(230); err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	if err := text.PrintfLine("TYPE I"); err != nil {
		return nil, fmt.Errorf("sending TYPE: %w", err)
	}
	if _, _, err := text.ReadResponse(200); err != nil {
		return nil, fmt.Errorf("TYPE response: %w", err)
	}

	if err := text.PrintfLine("PASV"); err != nil {
		return nil, fmt.Errorf("sending PASV: %w", err)
	}
	_, pasvLine, err := text.ReadResponse(227)
	if err != nil {
		return nil, fmt.Errorf("PASV response: %w", err)
	}
	dataHost, dataPort, err := parsePASV(pasvLine)
	if err != nil {
		return nil, fmt.Errorf("parsing PASV response %q: %w", pasvLine, err)
	}

	dataConn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(dataHost, strconv.Itoa(dataPort)))
	if err != nil {
		return nil, fmt.Errorf("dialing data connection: %w", err)
	}
	defer dataConn.Close()

	if err := text.PrintfLine("RETR %s", parsed.Path); err != nil {
		return nil, fmt.Errorf("sending RETR: %w", err)
	}
	if _, _, err := text.ReadResponse(150); err != nil {
		return nil, fmt.Errorf("RETR response: %w", err)
	}

	if err := writeToTemp(dataConn, destPath); err != nil {
		return nil, err
	}

	if _, _, err := text.ReadResponse(226); err != nil {
		return nil, fmt.Errorf("transfer completion response: %w", err)
	}

	return &Result{Path: destPath, SourceURL: parsed.String()}, nil
}

// parsePASV extracts the data host/port from a PASV response line of the
// form "227 Entering Passive Mode (h1,h2,h3,h4,p1,p2).".
func parsePASV(line string) (string, int, error) {
	start := strings.IndexByte(line, '(')
	end := strings.IndexByte(line, ')')
	if start < 0 || end < 0 || end < start {
		return "", 0, fmt.Errorf("no parenthesised address in %q", line)
	}
	parts := strings.Split(line[start+1:end], ",")
	if len(parts) != 6 {
		return "", 0, fmt.Errorf("expected 6 octets, got %d", len(parts))
	}

	nums := make([]int, 6)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return "", 0, fmt.Errorf("octet %d: %w", i, err)
		}
		nums[i] = n
	}

	host := fmt.Sprintf("%d.%d.%d.%d", nums[0], nums[1], nums[2], nums[3])
	port := nums[4]*256 + nums[5]
	return host, port, nil
}
