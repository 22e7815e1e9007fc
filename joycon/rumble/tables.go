package rumble

// Hardware lookup tables for the linear-resonant-actuator waveform encoder.
// Values are reproduced from the vendor's reverse-engineered wire tables;
// they follow the controller's log2 frequency steps and are data, not math
// to re-derive. Frequencies are stored in decihertz so the table stays
// integer. Both tables are strictly increasing in their first column, which
// the quantizers rely on.

type freqEntry struct {
	DeciHz uint16 // resonant frequency, 0.1 Hz units
	HF     uint16 // high-channel frequency bits
	LF     uint8  // low-channel frequency bits
}

type ampEntry struct {
	Scaled uint16 // amplitude, 0.1% units (0..1003)
	HA     uint8  // high-channel amplitude bits
	LA     uint16 // low-channel amplitude bits
}

var freqTable = []freqEntry{
	{409, 0x0000, 0x01}, {418, 0x0000, 0x02}, {427, 0x0000, 0x03}, {436, 0x0000, 0x04},
	{446, 0x0000, 0x05}, {456, 0x0000, 0x06}, {465, 0x0000, 0x07}, {476, 0x0000, 0x08},
	{486, 0x0000, 0x09}, {497, 0x0000, 0x0A}, {508, 0x0000, 0x0B}, {519, 0x0000, 0x0C},
	{530, 0x0000, 0x0D}, {542, 0x0000, 0x0E}, {554, 0x0000, 0x0F}, {566, 0x0000, 0x10},
	{578, 0x0000, 0x11}, {591, 0x0000, 0x12}, {604, 0x0000, 0x13}, {617, 0x0000, 0x14},
	{630, 0x0000, 0x15}, {644, 0x0000, 0x16}, {658, 0x0000, 0x17}, {673, 0x0000, 0x18},
	{687, 0x0000, 0x19}, {703, 0x0000, 0x1A}, {718, 0x0000, 0x1B}, {734, 0x0000, 0x1C},
	{750, 0x0000, 0x1D}, {766, 0x0000, 0x1E}, {783, 0x0000, 0x1F}, {800, 0x0000, 0x20},
	{818, 0x0004, 0x21}, {835, 0x0008, 0x22}, {854, 0x000C, 0x23}, {872, 0x0010, 0x24},
	{892, 0x0014, 0x25}, {911, 0x0018, 0x26}, {931, 0x001C, 0x27}, {951, 0x0020, 0x28},
	{972, 0x0024, 0x29}, {993, 0x0028, 0x2A}, {1015, 0x002C, 0x2B}, {1037, 0x0030, 0x2C},
	{1060, 0x0034, 0x2D}, {1083, 0x0038, 0x2E}, {1107, 0x003C, 0x2F}, {1131, 0x0040, 0x30},
	{1156, 0x0044, 0x31}, {1181, 0x0048, 0x32}, {1207, 0x004C, 0x33}, {1234, 0x0050, 0x34},
	{1261, 0x0054, 0x35}, {1288, 0x0058, 0x36}, {1317, 0x005C, 0x37}, {1345, 0x0060, 0x38},
	{1375, 0x0064, 0x39}, {1405, 0x0068, 0x3A}, {1436, 0x006C, 0x3B}, {1467, 0x0070, 0x3C},
	{1499, 0x0074, 0x3D}, {1532, 0x0078, 0x3E}, {1566, 0x007C, 0x3F}, {1600, 0x0080, 0x40},
	{1635, 0x0084, 0x41}, {1671, 0x0088, 0x42}, {1707, 0x008C, 0x43}, {1745, 0x0090, 0x44},
	{1783, 0x0094, 0x45}, {1822, 0x0098, 0x46}, {1862, 0x009C, 0x47}, {1903, 0x00A0, 0x48},
	{1944, 0x00A4, 0x49}, {1987, 0x00A8, 0x4A}, {2030, 0x00AC, 0x4B}, {2075, 0x00B0, 0x4C},
	{2120, 0x00B4, 0x4D}, {2167, 0x00B8, 0x4E}, {2214, 0x00BC, 0x4F}, {2263, 0x00C0, 0x50},
	{2312, 0x00C4, 0x51}, {2363, 0x00C8, 0x52}, {2415, 0x00CC, 0x53}, {2468, 0x00D0, 0x54},
	{2522, 0x00D4, 0x55}, {2577, 0x00D8, 0x56}, {2633, 0x00DC, 0x57}, {2691, 0x00E0, 0x58},
	{2750, 0x00E4, 0x59}, {2810, 0x00E8, 0x5A}, {2872, 0x00EC, 0x5B}, {2934, 0x00F0, 0x5C},
	{2999, 0x00F4, 0x5D}, {3064, 0x00F8, 0x5E}, {3131, 0x00FC, 0x5F}, {3200, 0x0100, 0x60},
	{3270, 0x0104, 0x61}, {3342, 0x0108, 0x62}, {3415, 0x010C, 0x63}, {3490, 0x0110, 0x64},
	{3566, 0x0114, 0x65}, {3644, 0x0118, 0x66}, {3724, 0x011C, 0x67}, {3805, 0x0120, 0x68},
	{3889, 0x0124, 0x69}, {3974, 0x0128, 0x6A}, {4061, 0x012C, 0x6B}, {4150, 0x0130, 0x6C},
	{4241, 0x0134, 0x6D}, {4334, 0x0138, 0x6E}, {4429, 0x013C, 0x6F}, {4525, 0x0140, 0x70},
	{4625, 0x0144, 0x71}, {4726, 0x0148, 0x72}, {4829, 0x014C, 0x73}, {4935, 0x0150, 0x74},
	{5043, 0x0154, 0x75}, {5154, 0x0158, 0x76}, {5266, 0x015C, 0x77}, {5382, 0x0160, 0x78},
	{5500, 0x0164, 0x79}, {5620, 0x0168, 0x7A}, {5743, 0x016C, 0x7B}, {5869, 0x0170, 0x7C},
	{5997, 0x0174, 0x7D}, {6129, 0x0178, 0x7E}, {6263, 0x017C, 0x7F}, {6400, 0x0180, 0x7F},
	{6540, 0x0184, 0x7F}, {6683, 0x0188, 0x7F}, {6830, 0x018C, 0x7F}, {6979, 0x0190, 0x7F},
	{7132, 0x0194, 0x7F}, {7288, 0x0198, 0x7F}, {7448, 0x019C, 0x7F}, {7611, 0x01A0, 0x7F},
	{7778, 0x01A4, 0x7F}, {7948, 0x01A8, 0x7F}, {8122, 0x01AC, 0x7F}, {8300, 0x01B0, 0x7F},
	{8482, 0x01B4, 0x7F}, {8667, 0x01B8, 0x7F}, {8857, 0x01BC, 0x7F}, {9051, 0x01C0, 0x7F},
	{9249, 0x01C4, 0x7F}, {9452, 0x01C8, 0x7F}, {9659, 0x01CC, 0x7F}, {9870, 0x01D0, 0x7F},
	{10086, 0x01D4, 0x7F}, {10307, 0x01D8, 0x7F}, {10533, 0x01DC, 0x7F}, {10763, 0x01E0, 0x7F},
	{10999, 0x01E4, 0x7F}, {11240, 0x01E8, 0x7F}, {11486, 0x01EC, 0x7F}, {11738, 0x01F0, 0x7F},
	{11995, 0x01F4, 0x7F}, {12257, 0x01F8, 0x7F}, {12526, 0x01FC, 0x7F},
}

var ampTable = []ampEntry{
	{0, 0x00, 0x0040}, {8, 0x02, 0x8040}, {9, 0x04, 0x0041}, {11, 0x06, 0x8041},
	{13, 0x08, 0x0042}, {16, 0x0A, 0x8042}, {19, 0x0C, 0x0043}, {22, 0x0E, 0x8043},
	{26, 0x10, 0x0044}, {31, 0x12, 0x8044}, {37, 0x14, 0x0045}, {44, 0x16, 0x8045},
	{52, 0x18, 0x0046}, {62, 0x1A, 0x8046}, {73, 0x1C, 0x0047}, {87, 0x1E, 0x8047},
	{103, 0x20, 0x0048}, {123, 0x22, 0x8048}, {128, 0x24, 0x0049}, {134, 0x26, 0x8049},
	{140, 0x28, 0x004A}, {146, 0x2A, 0x804A}, {153, 0x2C, 0x004B}, {159, 0x2E, 0x804B},
	{166, 0x30, 0x004C}, {174, 0x32, 0x804C}, {181, 0x34, 0x004D}, {189, 0x36, 0x804D},
	{198, 0x38, 0x004E}, {207, 0x3A, 0x804E}, {216, 0x3C, 0x004F}, {225, 0x3E, 0x804F},
	{230, 0x40, 0x0050}, {235, 0x42, 0x8050}, {240, 0x44, 0x0051}, {245, 0x46, 0x8051},
	{251, 0x48, 0x0052}, {256, 0x4A, 0x8052}, {262, 0x4C, 0x0053}, {268, 0x4E, 0x8053},
	{273, 0x50, 0x0054}, {279, 0x52, 0x8054}, {285, 0x54, 0x0055}, {292, 0x56, 0x8055},
	{298, 0x58, 0x0056}, {305, 0x5A, 0x8056}, {311, 0x5C, 0x0057}, {318, 0x5E, 0x8057},
	{325, 0x60, 0x0058}, {332, 0x62, 0x8058}, {340, 0x64, 0x0059}, {347, 0x66, 0x8059},
	{355, 0x68, 0x005A}, {362, 0x6A, 0x805A}, {370, 0x6C, 0x005B}, {378, 0x6E, 0x805B},
	{387, 0x70, 0x005C}, {395, 0x72, 0x805C}, {404, 0x74, 0x005D}, {413, 0x76, 0x805D},
	{422, 0x78, 0x005E}, {431, 0x7A, 0x805E}, {440, 0x7C, 0x005F}, {450, 0x7E, 0x805F},
	{460, 0x80, 0x0060}, {470, 0x82, 0x8060}, {480, 0x84, 0x0061}, {491, 0x86, 0x8061},
	{501, 0x88, 0x0062}, {512, 0x8A, 0x8062}, {524, 0x8C, 0x0063}, {535, 0x8E, 0x8063},
	{547, 0x90, 0x0064}, {559, 0x92, 0x8064}, {571, 0x94, 0x0065}, {583, 0x96, 0x8065},
	{596, 0x98, 0x0066}, {609, 0x9A, 0x8066}, {623, 0x9C, 0x0067}, {636, 0x9E, 0x8067},
	{650, 0xA0, 0x0068}, {664, 0xA2, 0x8068}, {679, 0xA4, 0x0069}, {694, 0xA6, 0x8069},
	{709, 0xA8, 0x006A}, {725, 0xAA, 0x806A}, {740, 0xAC, 0x006B}, {757, 0xAE, 0x806B},
	{773, 0xB0, 0x006C}, {790, 0xB2, 0x806C}, {807, 0xB4, 0x006D}, {825, 0xB6, 0x806D},
	{843, 0xB8, 0x006E}, {862, 0xBA, 0x806E}, {881, 0xBC, 0x006F}, {900, 0xBE, 0x806F},
	{920, 0xC0, 0x0070}, {940, 0xC2, 0x8070}, {960, 0xC4, 0x0071}, {981, 0xC6, 0x8071},
	{1003, 0xC8, 0x0072},
}
