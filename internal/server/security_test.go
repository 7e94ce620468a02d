package server

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestCertificate(t *testing.T, certFile, keyFile string) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject: pkix.Name{
			Organization:  []string{"Test"},
			Country:       []string{"US"},
			Province:      []string{""},
			Locality:      []string{"San Francisco"},
			StreetAddress: []string{""},
			PostalCode:    []string{""},
		},
		NotBefore:   time.Now(),
		NotAfter:    time.Now().Add(365 * 24 * time.Hour),
		KeyUsage:    x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1)},
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	require.NoError(t, err)

	certOut, err := os.Create(certFile)
	require.NoError(t, err)
	defer certOut.Close()

	err = pem.Encode(certOut, &pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	require.NoError(t, err)

	keyOut, err := os.Create(keyFile)
	require.NoError(t, err)
	defer keyOut.Close()

	privKeyBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	require.NoError(t, err)

	err = pem.Encode(keyOut, &pem.Block{Type: "PRIVATE KEY", Bytes: privKeyBytes})
	require.NoError(t, err)
}

func TestNewTLSListener(t *testing.T) {
	listener := NewTLSListener("server.crt", "server.key")
	require.NotNil(t, listener)
	assert.Equal(t, "server.crt", listener.certFileName)
	assert.Equal(t, "server.key", listener.privateKeyFileName)
}

func TestTLSListener_Listen(t *testing.T) {
	tempDir := t.TempDir()
	certFile := filepath.Join(tempDir, "server.crt")
	keyFile := filepath.Join(tempDir, "server.key")
	createTestCertificate(t, certFile, keyFile)

	tests := []struct {
		name     string
		cert     string
		key      string
		protocol string
		addr     string
		wantErr  string
	}{
		{name: "tcp", cert: certFile, key: keyFile, protocol: "tcp", addr: "127.0.0.1:0"},
		{name: "tcp4", cert: certFile, key: keyFile, protocol: "tcp4", addr: "127.0.0.1:0"},
		{name: "missing certificate", cert: "nonexistent.crt", key: "nonexistent.key", protocol: "tcp", addr: "127.0.0.1:0", wantErr: "failed to load TLS certificate"},
		{name: "invalid address", cert: certFile, key: keyFile, protocol: "tcp", addr: "invalid-address", wantErr: "failed to listen on invalid-address"},
		{name: "unknown protocol", cert: certFile, key: keyFile, protocol: "carrier-pigeon", addr: "127.0.0.1:0", wantErr: "failed to listen"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ln, err := NewTLSListener(tt.cert, tt.key).Listen(tt.protocol, tt.addr)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			defer ln.Close()
			assert.NotNil(t, ln.Addr())
		})
	}
}

func TestTLSListener_Handshake(t *testing.T) {
	tempDir := t.TempDir()
	certFile := filepath.Join(tempDir, "server.crt")
	keyFile := filepath.Join(tempDir, "server.key")
	createTestCertificate(t, certFile, keyFile)

	ln, err := NewTLSListener(certFile, keyFile).Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan error, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			accepted <- err
			return
		}
		defer conn.Close()
		accepted <- conn.(*tls.Conn).Handshake()
	}()

	conn, err := tls.Dial("tcp", ln.Addr().String(), &tls.Config{InsecureSkipVerify: true}) //nolint:gosec
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, uint16(tls.VersionTLS13), conn.ConnectionState().Version)
	require.NoError(t, <-accepted)
}

func TestPlainListener_Listen(t *testing.T) {
	tests := []struct {
		name     string
		protocol string
		addr     string
		wantErr  bool
	}{
		{name: "tcp", protocol: "tcp", addr: "127.0.0.1:0"},
		{name: "tcp4", protocol: "tcp4", addr: "127.0.0.1:0"},
		{name: "invalid address", protocol: "tcp", addr: "invalid-address", wantErr: true},
		{name: "unknown protocol", protocol: "carrier-pigeon", addr: "127.0.0.1:0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ln, err := NewPlainListener().Listen(tt.protocol, tt.addr)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer ln.Close()

			_, ok := ln.(*net.TCPListener)
			assert.True(t, ok)
		})
	}
}
