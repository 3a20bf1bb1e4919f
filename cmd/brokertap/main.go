// Command brokertap is a wire-level diagnostic tool: it sniffs TCP
// traffic on a broker connection's port and pretty-prints the decoded
// frames it can parse, for debugging protocol-level issues without
// reaching for a full packet capture tool.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcap"

	"github.com/relaybroker/broker-client-go/core/frame"
)

func main() {
	iface := flag.String("iface", "lo", "network interface to capture on")
	port := flag.Int("port", 6650, "broker TCP port to filter on")
	snaplen := flag.Int("snaplen", 65536, "capture snapshot length")
	flag.Parse()

	handle, err := pcap.OpenLive(*iface, int32(*snaplen), true, pcap.BlockForever)
	if err != nil {
		log.Fatalf("brokertap: open %s: %v", *iface, err)
	}
	defer handle.Close()

	filter := fmt.Sprintf("tcp port %d", *port)
	if err := handle.SetBPFFilter(filter); err != nil {
		log.Fatalf("brokertap: filter %q: %v", filter, err)
	}

	fmt.Printf("listening on %s, filter %q\n", *iface, filter)

	// Reassembling TCP streams is out of scope for a diagnostic tap;
	// each packet's payload is decoded as a standalone frame on a
	// best-effort basis, which works for the common case of one frame
	// per segment and silently skips anything split across segments.
	source := gopacket.NewPacketSource(handle, handle.LinkType())
	for packet := range source.Packets() {
		tcpLayer := packet.Layer(layers.LayerTypeTCP)
		if tcpLayer == nil {
			continue
		}
		tcp, _ := tcpLayer.(*layers.TCP)
		payload := tcp.LayerPayload()
		if len(payload) == 0 {
			continue
		}
		printFrame(packet.Metadata().Timestamp, tcp, payload)
	}
}

func printFrame(ts time.Time, tcp *layers.TCP, payload []byte) {
	var f frame.Frame
	if err := f.Decode(bytes.NewReader(payload)); err != nil {
		if err != io.EOF {
			fmt.Fprintf(os.Stderr, "%s %d->%d: %d bytes, undecodable: %v\n",
				ts.Format(time.RFC3339Nano), tcp.SrcPort, tcp.DstPort, len(payload), err)
		}
		return
	}
	fmt.Printf("%s %d->%d: %v\n", ts.Format(time.RFC3339Nano), tcp.SrcPort, tcp.DstPort, f.BaseCmd.GetType())
}
