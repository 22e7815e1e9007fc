package frame

// CRC8 with polynomial 0x8D, MSB-first, no reflection, zero init.
// The controller computes this over the pad, command and header-data
// bytes of every UART envelope.

const crcPoly = 0x8D

var crcTable [256]byte

func init() {
	for i := 0; i < 256; i++ {
		crc := byte(i)
		for bit := 0; bit < 8; bit++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ crcPoly
			} else {
				crc <<= 1
			}
		}
		crcTable[i] = crc
	}
}

// CRC8 returns the checksum of data.
func CRC8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc = crcTable[crc^b]
	}
	return crc
}
