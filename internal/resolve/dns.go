package resolve

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const resolvConfPath = "/etc/resolv.conf"

// queryHost resolves a hostname to A (and AAAA, unless disabled) records via
// the configured upstream.
func (r *Resolver) queryHost(ctx context.Context, host string) (ips []net.IP, cnames []string, err error) {
	upstream := r.nameserver
	if upstream == "" {
		upstream, err = systemNameserver()
		if err != nil {
			return nil, nil, err
		}
		r.logger.Debug("using system nameserver %s", upstream)
	}

	qtypes := []uint16{dns.TypeA}
	if !r.noIPv6 {
		qtypes = append(qtypes, dns.TypeAAAA)
	}

	client := &dns.Client{
		Timeout: 5 * time.Second,
		Net:     "udp",
	}

	for _, qtype := range qtypes {
		req := new(dns.Msg)
		req.SetQuestion(dns.Fqdn(host), qtype)

		resp, err := exchange(ctx, client, req, upstream)
		if err != nil {
			return nil, nil, err
		}

		switch resp.Rcode {
		case dns.RcodeSuccess:
		case dns.RcodeNameError:
			// NXDOMAIN: report zero addresses rather than failing the run.
			continue
		default:
			return nil, nil, fmt.Errorf("upstream returned %s for %s", dns.RcodeToString[resp.Rcode], host)
		}

		ips, cnames = appendAnswers(resp.Answer, ips, cnames)
	}

	return ips, cnames, nil
}

// exchange sends a query to the upstream resolver, retrying over TCP when
// the response is truncated.
func exchange(ctx context.Context, client *dns.Client, req *dns.Msg, upstream string) (*dns.Msg, error) {
	resp, _, err := client.ExchangeContext(ctx, req, upstream)
	if err != nil {
		return nil, fmt.Errorf("upstream query: %w", err)
	}

	// If truncated, retry over TCP
	if resp.Truncated {
		tcpClient := &dns.Client{
			Timeout: client.Timeout,
			Net:     "tcp",
		}
		resp, _, err = tcpClient.ExchangeContext(ctx, req, upstream)
		if err != nil {
			return nil, fmt.Errorf("upstream TCP retry: %w", err)
		}
	}

	return resp, nil
}

// appendAnswers extracts IPs and CNAMEs from an answer section.
func appendAnswers(answers []dns.RR, ips []net.IP, cnames []string) ([]net.IP, []string) {
	for _, rr := range answers {
		switch v := rr.(type) {
		case *dns.A:
			ips = append(ips, v.A)
		case *dns.AAAA:
			ips = append(ips, v.AAAA)
		case *dns.CNAME:
			cnames = append(cnames, normalizeDomain(v.Target))
		}
	}
	return ips, cnames
}

// systemNameserver returns the first nameserver from resolv.conf as host:port.
func systemNameserver() (string, error) {
	conf, err := dns.ClientConfigFromFile(resolvConfPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", resolvConfPath, err)
	}
	if len(conf.Servers) == 0 {
		return "", fmt.Errorf("no nameservers in %s", resolvConfPath)
	}
	return net.JoinHostPort(conf.Servers[0], conf.Port), nil
}

// normalizeDomain lowercases and strips trailing dot from a domain name.
func normalizeDomain(domain string) string {
	domain = strings.ToLower(domain)
	domain = strings.TrimSuffix(domain, ".")
	return domain
}
