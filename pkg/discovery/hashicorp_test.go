package discovery

import (
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hashicorp/mdns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hashicorpEntry(instance, ip string, info ...string) *mdns.ServiceEntry {
	return &mdns.ServiceEntry{
		Name:       instance + "._http._tcp.local.",
		Host:       instance + ".local.",
		AddrV4:     net.ParseIP(ip),
		Port:       8080,
		InfoFields: info,
	}
}

func TestHashicorpProviderRounds(t *testing.T) {
	var rounds atomic.Int32
	query := func(params *mdns.QueryParam) error {
		n := rounds.Add(1)
		params.Entries <- hashicorpEntry("printer", "10.0.0.5", "ver=1")
		if n == 1 {
			params.Entries <- hashicorpEntry("scanner", "10.0.0.6")
		}
		if n >= 4 {
			params.Entries <- hashicorpEntry("printer", "10.0.0.5", "ver=2")
		}
		return nil
	}

	p := NewHashicorpProviderWithQuery(BrowserConfig{QueryInterval: 5 * time.Millisecond}, query)
	defer p.Close()

	require.NoError(t, p.BeginScan("http", "tcp", "local."))

	events := collectEvents(t, p.Events(), 7)
	require.Equal(t, []EventKind{
		EventStart,
		EventFound, EventResolved, // printer
		EventFound, EventResolved, // scanner
		EventRemove, // scanner missing from rounds 2 and 3
		EventUpdate, // printer TXT change in round 4
	}, kinds(events))

	assert.Equal(t, "scanner", events[5].Name())
	assert.Equal(t, "printer", events[6].Name())
	assert.Equal(t, "2", events[6].Service.TXT["ver"])

	require.NoError(t, p.EndScan())
	for {
		ev := collectEvents(t, p.Events(), 1)[0]
		if ev.Kind == EventStop {
			break
		}
	}
}

func TestHashicorpProviderQueryError(t *testing.T) {
	query := func(params *mdns.QueryParam) error {
		return errors.New("bind: address in use")
	}

	p := NewHashicorpProviderWithQuery(BrowserConfig{QueryInterval: time.Hour}, query)
	defer p.Close()

	require.NoError(t, p.BeginScan("http", "tcp", "local."))

	events := collectEvents(t, p.Events(), 2)
	require.Equal(t, []EventKind{EventStart, EventError}, kinds(events))
	assert.ErrorIs(t, events[1].Err, ErrBrowseFailed)
}

func TestHashicorpProviderQueryParams(t *testing.T) {
	got := make(chan mdns.QueryParam, 1)
	query := func(params *mdns.QueryParam) error {
		select {
		case got <- *params:
		default:
		}
		return nil
	}

	p := NewHashicorpProviderWithQuery(BrowserConfig{QueryTimeout: 250 * time.Millisecond, QueryInterval: time.Hour}, query)
	defer p.Close()

	require.NoError(t, p.BeginScan("ipp", "tcp", "local."))

	select {
	case params := <-got:
		assert.Equal(t, "_ipp._tcp", params.Service)
		assert.Equal(t, "local", params.Domain)
		assert.Equal(t, 250*time.Millisecond, params.Timeout)
		assert.Nil(t, params.Interface)
	case <-time.After(2 * time.Second):
		t.Fatal("query was not issued")
	}
}

func TestInstanceName(t *testing.T) {
	assert.Equal(t, "printer", instanceName("printer._ipp._tcp.local.", "_ipp._tcp", "local"))
	assert.Equal(t, "My Printer", instanceName(`My\ Printer._ipp._tcp.local.`, "_ipp._tcp", "local"))
}

func TestHashicorpEntryToDescriptor(t *testing.T) {
	assert.Nil(t, hashicorpEntryToDescriptor(nil, "_http._tcp", "local"))

	svc := hashicorpEntryToDescriptor(hashicorpEntry("nas", "192.168.1.2", "path=/"), "_http._tcp", "local")
	require.NotNil(t, svc)
	assert.Equal(t, "nas", svc.Name)
	assert.Equal(t, "nas.local", svc.Host)
	assert.Equal(t, uint16(8080), svc.Port)
	assert.Equal(t, []string{"192.168.1.2"}, svc.Addresses)
	assert.Equal(t, "/", svc.TXT["path"])
}
