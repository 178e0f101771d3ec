package testutil

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"golang.org/x/net/http2"
)

const snapLen = 65536

// PCAPWriter writes captured TCP payloads to a PCAP file for Wireshark
type PCAPWriter struct {
	filename string
	file     *os.File
	writer   *pcapgo.Writer
	mu       sync.Mutex
	closed   bool
	packets  int

	// next sequence number per direction, keyed by "src:port>dst:port"
	seq map[string]uint32
}

// NewPCAPWriter creates a PCAP file at filename
func NewPCAPWriter(filename string) (*PCAPWriter, error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create PCAP file: %w", err)
	}

	writer := pcapgo.NewWriter(file)
	if err := writer.WriteFileHeader(snapLen, layers.LinkTypeEthernet); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write PCAP header: %w", err)
	}

	return &PCAPWriter{
		filename: filename,
		file:     file,
		writer:   writer,
		seq:      make(map[string]uint32),
	}, nil
}

// WritePacket frames data as one Ethernet/IPv4/TCP segment.
// Sequence numbers advance per direction so Wireshark can reassemble streams.
func (p *PCAPWriter) WritePacket(data []byte, srcIP, dstIP net.IP, srcPort, dstPort uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return fmt.Errorf("PCAP writer is closed")
	}

	flow := fmt.Sprintf("%s:%d>%s:%d", srcIP, srcPort, dstIP, dstPort)
	seq := p.seq[flow]
	p.seq[flow] = seq + uint32(len(data))

	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x01},
		DstMAC:       net.HardwareAddr{0x00, 0x00, 0x00, 0x00, 0x00, 0x02},
		EthernetType: layers.EthernetTypeIPv4,
	}

	ip := &layers.IPv4{
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    srcIP.To4(),
		DstIP:    dstIP.To4(),
	}

	tcp := &layers.TCP{
		SrcPort: layers.TCPPort(srcPort),
		DstPort: layers.TCPPort(dstPort),
		Seq:     seq,
		PSH:     true,
		ACK:     true,
		Window:  65535,
	}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		return fmt.Errorf("failed to set checksum layer: %w", err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		ComputeChecksums: true,
		FixLengths:       true,
	}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, tcp, gopacket.Payload(data)); err != nil {
		return fmt.Errorf("failed to serialize packet: %w", err)
	}

	frame := buf.Bytes()
	captureLen := min(len(frame), snapLen)
	captureInfo := gopacket.CaptureInfo{
		Timestamp:     time.Now(),
		CaptureLength: captureLen,
		Length:        len(frame),
	}

	if err := p.writer.WritePacket(captureInfo, frame[:captureLen]); err != nil {
		return fmt.Errorf("failed to write packet: %w", err)
	}
	p.packets++

	return nil
}

// Packets returns how many packets were written
func (p *PCAPWriter) Packets() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.packets
}

// Filename returns the PCAP path
func (p *PCAPWriter) Filename() string {
	return p.filename
}

// Close closes the PCAP writer
func (p *PCAPWriter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	if err := p.file.Close(); err != nil {
		return fmt.Errorf("failed to close PCAP file: %w", err)
	}
	return nil
}

// CaptureConnection copies everything read and written on a TCP connection into a PCAP file
type CaptureConnection struct {
	net.Conn
	pcapWriter *PCAPWriter
	srcIP      net.IP
	dstIP      net.IP
	srcPort    uint16
	dstPort    uint16
}

// NewCaptureConnection wraps a TCP connection to capture traffic
func NewCaptureConnection(conn net.Conn, pcapWriter *PCAPWriter) *CaptureConnection {
	srcAddr := conn.LocalAddr().(*net.TCPAddr)
	dstAddr := conn.RemoteAddr().(*net.TCPAddr)

	return &CaptureConnection{
		Conn:       conn,
		pcapWriter: pcapWriter,
		srcIP:      srcAddr.IP,
		dstIP:      dstAddr.IP,
		srcPort:    uint16(srcAddr.Port),
		dstPort:    uint16(dstAddr.Port),
	}
}

// Read captures inbound data
func (c *CaptureConnection) Read(b []byte) (n int, err error) {
	n, err = c.Conn.Read(b)
	if n > 0 && c.pcapWriter != nil {
		_ = c.pcapWriter.WritePacket(b[:n], c.dstIP, c.srcIP, c.dstPort, c.srcPort)
	}
	return n, err
}

// Write captures outbound data
func (c *CaptureConnection) Write(b []byte) (n int, err error) {
	if len(b) > 0 && c.pcapWriter != nil {
		_ = c.pcapWriter.WritePacket(b, c.srcIP, c.dstIP, c.srcPort, c.dstPort)
	}
	return c.Conn.Write(b)
}

// NewH2CClient returns an HTTP/2 cleartext client. When w is non-nil every
// connection is captured into it.
func NewH2CClient(w *PCAPWriter) *http.Client {
	return &http.Client{
		Transport: &http2.Transport{
			AllowHTTP: true,
			DialTLS: func(network, addr string, _ *tls.Config) (net.Conn, error) {
				conn, err := net.Dial(network, addr)
				if err != nil {
					return nil, err
				}
				if w == nil {
					return conn, nil
				}
				return NewCaptureConnection(conn, w), nil
			},
		},
		Timeout: 5 * time.Second,
	}
}
