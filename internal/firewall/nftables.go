// Package firewall installs nftables accept rules for configured listen
// endpoints.
package firewall

import (
	"fmt"
	"net"
	"strings"

	"github.com/google/nftables"
	"github.com/google/nftables/binaryutil"
	"github.com/google/nftables/expr"
	"golang.org/x/sys/unix"

	"github.com/listenspec/listenspec/internal/endpoint"
	"github.com/listenspec/listenspec/internal/logging"
	"github.com/listenspec/listenspec/internal/resolve"
)

// TableName is the nftables table owned by listenspec.
const TableName = "listenspec"

// Firewall manages the listenspec nftables table. It carries only
// configuration; each call opens its own netlink connection.
type Firewall struct {
	protocol string // "tcp", "udp", or "both"
	logger   *logging.StderrLogger
}

// Config holds the configuration for creating a new Firewall.
type Config struct {
	Protocol string
	Logger   *logging.StderrLogger
}

// New creates a new Firewall instance. Call Apply() to install the rules.
func New(cfg Config) *Firewall {
	return &Firewall{
		protocol: cfg.Protocol,
		logger:   cfg.Logger,
	}
}

// Apply installs one accept rule per endpoint and protocol in a fresh
// listenspec table, replacing any previous ruleset. Returns the number of
// rules installed.
func (fw *Firewall) Apply(entries []endpoint.Entry) (int, error) {
	conn, err := nftables.New()
	if err != nil {
		return 0, fmt.Errorf("creating nftables connection: %w", err)
	}

	// Replace a leftover table from an earlier run, if present.
	if tables, err := conn.ListTables(); err == nil {
		for _, t := range tables {
			if t.Name == TableName && t.Family == nftables.TableFamilyINet {
				conn.DelTable(t)
				break
			}
		}
	}

	table := &nftables.Table{
		Name:   TableName,
		Family: nftables.TableFamilyINet,
	}
	conn.AddTable(table)

	policy := nftables.ChainPolicyAccept
	inputChain := conn.AddChain(&nftables.Chain{
		Name:     "input",
		Table:    table,
		Hooknum:  nftables.ChainHookInput,
		Priority: nftables.ChainPriorityFilter,
		Type:     nftables.ChainTypeFilter,
		Policy:   &policy,
	})

	count := 0
	for _, e := range entries {
		if e.Port == 0 {
			// Port 0 is assigned by the OS at bind time; no rule to install.
			fw.logger.Debug("skipping %s: port assigned at bind time", e)
			continue
		}
		for _, proto := range protoBytes(fw.protocol) {
			conn.AddRule(&nftables.Rule{
				Table: table,
				Chain: inputChain,
				Exprs: ruleExprs(e, proto),
			})
			count++
		}
	}

	if err := conn.Flush(); err != nil {
		return 0, fmt.Errorf("flushing nftables rules: %w", err)
	}

	fw.logger.Debug("nftables table %s created (%d rules)", TableName, count)
	return count, nil
}

// Remove deletes the listenspec table with all its chains and rules.
// This is idempotent — safe to call even if the table doesn't exist.
func (fw *Firewall) Remove() error {
	conn, err := nftables.New()
	if err != nil {
		return fmt.Errorf("creating nftables connection: %w", err)
	}

	conn.DelTable(&nftables.Table{
		Name:   TableName,
		Family: nftables.TableFamilyINet,
	})
	if err := conn.Flush(); err != nil {
		// Ignore errors — table may already be gone
		return nil
	}

	fw.logger.Debug("nftables table %s deleted", TableName)
	return nil
}

// ruleExprs builds the expression list for a single endpoint accept rule.
// IP-literal devices match on destination address, other devices match on
// the inbound interface name, and an empty device matches all traffic to
// the port.
func ruleExprs(e endpoint.Entry, proto byte) []expr.Any {
	var exprs []expr.Any

	switch resolve.Classify(e.Device) {
	case resolve.SourceLiteral:
		ip := net.ParseIP(e.Device)
		if v4 := ip.To4(); v4 != nil {
			exprs = append(exprs,
				// Match: nfproto == ipv4
				&expr.Meta{Key: expr.MetaKeyNFPROTO, Register: 1},
				&expr.Cmp{
					Op:       expr.CmpOpEq,
					Register: 1,
					Data:     []byte{unix.NFPROTO_IPV4},
				},
				// Match: ip daddr == device
				&expr.Payload{
					DestRegister: 1,
					Base:         expr.PayloadBaseNetworkHeader,
					Offset:       16,
					Len:          4,
				},
				&expr.Cmp{
					Op:       expr.CmpOpEq,
					Register: 1,
					Data:     v4,
				},
			)
		} else {
			exprs = append(exprs,
				&expr.Meta{Key: expr.MetaKeyNFPROTO, Register: 1},
				&expr.Cmp{
					Op:       expr.CmpOpEq,
					Register: 1,
					Data:     []byte{unix.NFPROTO_IPV6},
				},
				// Load IPv6 dest address (offset 24, len 16 in IPv6 header)
				&expr.Payload{
					DestRegister: 1,
					Base:         expr.PayloadBaseNetworkHeader,
					Offset:       24,
					Len:          16,
				},
				&expr.Cmp{
					Op:       expr.CmpOpEq,
					Register: 1,
					Data:     ip.To16(),
				},
			)
		}

	case resolve.SourceInterface:
		exprs = append(exprs,
			// Match: iifname == device
			&expr.Meta{Key: expr.MetaKeyIIFNAME, Register: 1},
			&expr.Cmp{
				Op:       expr.CmpOpEq,
				Register: 1,
				Data:     ifname(e.Device),
			},
		)
	}

	exprs = append(exprs,
		// Match: l4proto == proto
		&expr.Meta{Key: expr.MetaKeyL4PROTO, Register: 1},
		&expr.Cmp{
			Op:       expr.CmpOpEq,
			Register: 1,
			Data:     []byte{proto},
		},
		// Match: dport == port
		&expr.Payload{
			DestRegister: 1,
			Base:         expr.PayloadBaseTransportHeader,
			Offset:       2,
			Len:          2,
		},
		&expr.Cmp{
			Op:       expr.CmpOpEq,
			Register: 1,
			Data:     binaryutil.BigEndian.PutUint16(uint16(e.Port)),
		},
		&expr.Counter{},
		&expr.Verdict{Kind: expr.VerdictAccept},
	)

	return exprs
}

// Preview returns the rule lines Apply would install, in nft syntax, without
// touching the kernel.
func Preview(entries []endpoint.Entry, protocol string) []string {
	var lines []string
	for _, e := range entries {
		if e.Port == 0 {
			continue
		}
		for _, proto := range protoBytes(protocol) {
			lines = append(lines, ruleString(e, proto))
		}
	}
	return lines
}

// ruleString renders one rule in nft syntax for the preview.
func ruleString(e endpoint.Entry, proto byte) string {
	protoName := "tcp"
	if proto == unix.IPPROTO_UDP {
		protoName = "udp"
	}

	var b strings.Builder
	switch resolve.Classify(e.Device) {
	case resolve.SourceLiteral:
		if net.ParseIP(e.Device).To4() != nil {
			fmt.Fprintf(&b, "ip daddr %s ", e.Device)
		} else {
			fmt.Fprintf(&b, "ip6 daddr %s ", e.Device)
		}
	case resolve.SourceInterface:
		fmt.Fprintf(&b, "iifname %q ", e.Device)
	}
	fmt.Fprintf(&b, "%s dport %d counter accept", protoName, e.Port)
	return b.String()
}

// protoBytes maps the protocol option to IP protocol numbers.
func protoBytes(protocol string) []byte {
	switch protocol {
	case "tcp":
		return []byte{unix.IPPROTO_TCP}
	case "udp":
		return []byte{unix.IPPROTO_UDP}
	default:
		return []byte{unix.IPPROTO_TCP, unix.IPPROTO_UDP}
	}
}

// ifname pads an interface name to 16 bytes (IFNAMSIZ) for nftables comparison.
func ifname(name string) []byte {
	b := make([]byte, 16)
	copy(b, name)
	return b
}
