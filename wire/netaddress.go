package wire

import (
	"io"
	"strconv"
	"time"
)

// NetAddress captures a peer address record: IP, port, advertised services,
// and the last time it was seen active. The IP field keeps the original
// Satoshi-era IPv4-only encoding (a raw 32-bit value) rather than the
// 16-byte form later protocol versions use.
type NetAddress struct {
	IP        uint32
	Port      uint16
	Services  uint64
	Timestamp time.Time
}

// Key returns the canonical "ip:port" encoding used as this address's
// lookup key in the address book.
func (na *NetAddress) Key() string {
	return ipString(na.IP) + ":" + portString(na.Port)
}

// Serialize writes the canonical encoding of the address record.
func (na *NetAddress) Serialize(w io.Writer) error {
	if err := writeUint32(w, uint32(na.Timestamp.Unix())); err != nil {
		return err
	}
	if err := writeUint64(w, na.Services); err != nil {
		return err
	}
	if err := writeUint32(w, na.IP); err != nil {
		return err
	}
	return writeUint16(w, na.Port)
}

// Deserialize reads an address record from r.
func (na *NetAddress) Deserialize(r io.Reader) error {
	ts, err := readUint32(r)
	if err != nil {
		return err
	}
	na.Timestamp = time.Unix(int64(ts), 0)

	services, err := readUint64(r)
	if err != nil {
		return err
	}
	na.Services = services

	ip, err := readUint32(r)
	if err != nil {
		return err
	}
	na.IP = ip

	port, err := readUint16(r)
	if err != nil {
		return err
	}
	na.Port = port
	return nil
}

func ipString(ip uint32) string {
	return strconv.Itoa(int((ip>>24)&0xff)) + "." + strconv.Itoa(int((ip>>16)&0xff)) + "." +
		strconv.Itoa(int((ip>>8)&0xff)) + "." + strconv.Itoa(int(ip&0xff))
}

func portString(port uint16) string {
	return strconv.Itoa(int(port))
}
