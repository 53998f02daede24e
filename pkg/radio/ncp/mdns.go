package ncp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// mDNS service parameters.
const (
	ServiceType = "_wpan-ncp._tcp"
	Domain      = "local."

	// TXT keys.
	txtInterface = "IF"
	txtChannel   = "CH"
	txtVersion   = "V"

	protocolVersion = 1
)

// ErrNotFound is returned when no NCP answers before the context ends.
var ErrNotFound = errors.New("no ncp found")

// ServiceInfo is what an NCP advertises about itself.
type ServiceInfo struct {
	InterfaceID string
	Channel     uint16
	Version     int
}

// EncodeTXT returns the TXT records for info.
func EncodeTXT(info ServiceInfo) []string {
	txt := []string{
		txtVersion + "=" + strconv.Itoa(protocolVersion),
	}
	if info.InterfaceID != "" {
		txt = append(txt, txtInterface+"="+info.InterfaceID)
	}
	if info.Channel != 0 {
		txt = append(txt, txtChannel+"="+strconv.Itoa(int(info.Channel)))
	}
	return txt
}

// DecodeTXT parses TXT records. Unknown keys are ignored.
func DecodeTXT(txt []string) (ServiceInfo, error) {
	var info ServiceInfo
	for _, rec := range txt {
		key, value, ok := strings.Cut(rec, "=")
		if !ok {
			continue
		}
		switch key {
		case txtInterface:
			info.InterfaceID = value
		case txtChannel:
			ch, err := strconv.ParseUint(value, 10, 16)
			if err != nil {
				return info, fmt.Errorf("invalid %s: %q", txtChannel, value)
			}
			info.Channel = uint16(ch)
		case txtVersion:
			v, err := strconv.Atoi(value)
			if err != nil {
				return info, fmt.Errorf("invalid %s: %q", txtVersion, value)
			}
			info.Version = v
		}
	}
	if info.Version == 0 {
		return info, fmt.Errorf("missing %s", txtVersion)
	}
	return info, nil
}

// Service is a discovered NCP.
type Service struct {
	Instance  string
	Host      string
	Port      int
	Addresses []string
	Info      ServiceInfo
}

// Addr returns a dialable host:port, preferring IPv4.
func (s *Service) Addr() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return net.JoinHostPort(strings.TrimSuffix(host, "."), strconv.Itoa(s.Port))
}

// Advertiser publishes an NCP over mDNS.
type Advertiser struct {
	mu     sync.Mutex
	server *zeroconf.Server
}

// Advertise starts (or replaces) the advertisement. A zero ttl keeps the
// library default.
func (a *Advertiser) Advertise(instance string, port int, info ServiceInfo, ttl time.Duration) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}

	var opts []zeroconf.ServerOption
	if ttl > 0 {
		opts = append(opts, zeroconf.TTL(uint32(ttl.Seconds())))
	}

	server, err := zeroconf.Register(instance, ServiceType, Domain, port, EncodeTXT(info), nil, opts...)
	if err != nil {
		return fmt.Errorf("failed to register ncp service: %w", err)
	}
	a.server = server
	return nil
}

// Stop withdraws the advertisement.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// Browse reports NCPs until ctx ends. Entries with unreadable TXT records
// are skipped.
func Browse(ctx context.Context, iface string) (<-chan *Service, error) {
	out := make(chan *Service)
	entries := make(chan *zeroconf.ServiceEntry)
	removed := make(chan *zeroconf.ServiceEntry)

	var opts []zeroconf.ClientOption
	if iface != "" {
		ni, err := net.InterfaceByName(iface)
		if err != nil {
			return nil, err
		}
		opts = append(opts, zeroconf.SelectIfaces([]net.Interface{*ni}))
	}

	go func() {
		defer close(out)
		seen := make(map[string]bool)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				svc := entryToService(entry)
				if svc == nil || seen[svc.Instance] {
					continue
				}
				seen[svc.Instance] = true
				select {
				case out <- svc:
				case <-ctx.Done():
					return
				}
			case entry, ok := <-removed:
				if ok {
					delete(seen, entry.Instance)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		_ = zeroconf.Browse(ctx, ServiceType, Domain, entries, removed, opts...)
	}()

	return out, nil
}

// FindFirst browses until the first NCP answers.
func FindFirst(ctx context.Context, iface string) (*Service, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	services, err := Browse(ctx, iface)
	if err != nil {
		return nil, err
	}
	svc, ok := <-services
	if !ok {
		return nil, ErrNotFound
	}
	return svc, nil
}

func entryToService(entry *zeroconf.ServiceEntry) *Service {
	info, err := DecodeTXT(entry.Text)
	if err != nil {
		return nil
	}
	addrs := make([]string, 0, len(entry.AddrIPv4)+len(entry.AddrIPv6))
	for _, ip := range entry.AddrIPv4 {
		addrs = append(addrs, ip.String())
	}
	for _, ip := range entry.AddrIPv6 {
		addrs = append(addrs, ip.String())
	}
	return &Service{
		Instance:  entry.Instance,
		Host:      entry.HostName,
		Port:      entry.Port,
		Addresses: addrs,
		Info:      info,
	}
}
