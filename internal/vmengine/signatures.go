package vmengine

import "integritywatch/internal/platform"

// vmVendorStrings maps a hypervisor vendor string, read from CPUID
// leaves 0x40000000/0x40000100, to a human name. Matching is exact or
// substring in either direction, per the source engine's fuzzy match.
var vmVendorStrings = map[string]string{
	"VMwareVMware": "VMware",
	"VBoxVBoxVBox": "VirtualBox",
	"KVMKVMKVM":    "KVM",
	"Microsoft Hv": "Hyper-V",
	"XenVMMXenVMM": "Xen",
	"prl hyperv":   "Parallels",
	"TCGTCGTCGTCG": "QEMU",
	"bhyve bhyve":  "bhyve (FreeBSD)",
}

// vmVendorKeywords is the fallback substring list when a vendor string
// doesn't exactly match a known hypervisor signature.
var vmVendorKeywords = []string{
	"vmware", "vbox", "qemu", "kvm", "xen", "hyperv", "parallels",
}

// vmPCISignatures pairs exact (vendor, device) IDs with the hypervisor
// that owns them.
var vmPCISignatures = map[platform.PCIDevice]string{
	{Vendor: 0x80EE, Device: 0xCAFE}: "VirtualBox",
	{Vendor: 0x80EE, Device: 0xBEEF}: "VirtualBox",

	{Vendor: 0x15AD, Device: 0x0405}: "VMware",
	{Vendor: 0x15AD, Device: 0x0740}: "VMware",
	{Vendor: 0x15AD, Device: 0x0770}: "VMware",
	{Vendor: 0x15AD, Device: 0x0790}: "VMware",
	{Vendor: 0x15AD, Device: 0x07A0}: "VMware",
	{Vendor: 0x15AD, Device: 0x07E0}: "VMware",

	{Vendor: 0x1AF4, Device: 0x1000}: "QEMU/KVM (virtio-net)",
	{Vendor: 0x1AF4, Device: 0x1001}: "QEMU/KVM (virtio-blk)",
	{Vendor: 0x1AF4, Device: 0x1002}: "QEMU/KVM (virtio-balloon)",
	{Vendor: 0x1AF4, Device: 0x1003}: "QEMU/KVM (virtio-console)",
	{Vendor: 0x1AF4, Device: 0x1004}: "QEMU/KVM (virtio-rng)",
	{Vendor: 0x1AF4, Device: 0x1005}: "QEMU/KVM (virtio-mem)",
	{Vendor: 0x1AF4, Device: 0x1009}: "QEMU/KVM (virtio-fs)",
	{Vendor: 0x1B36, Device: 0x0001}: "QEMU (qxl)",
	{Vendor: 0x1B36, Device: 0x0100}: "QEMU",

	{Vendor: 0x1414, Device: 0x5353}: "Hyper-V",

	{Vendor: 0x1AB8, Device: 0x4000}: "Parallels",
	{Vendor: 0x1AB8, Device: 0x4005}: "Parallels",

	{Vendor: 0x5853, Device: 0x0001}: "Xen",
	{Vendor: 0x5853, Device: 0xC000}: "Xen",
}

// vmPCIVendorIDs is the looser vendor-only fallback table.
var vmPCIVendorIDs = map[uint16]string{
	0x80EE: "VirtualBox",
	0x15AD: "VMware",
	0x1AF4: "QEMU/KVM (virtio)",
	0x1B36: "QEMU/KVM (Red Hat)",
	0x1AB8: "Parallels",
}

// vmMACPrefixes maps a colon-separated, uppercase OUI to its hypervisor.
var vmMACPrefixes = map[string]string{
	"00:05:69": "VMware",
	"00:0C:29": "VMware",
	"00:1C:14": "VMware",
	"00:50:56": "VMware",
	"00:0F:4B": "VMware",
	"00:1C:42": "Parallels",
	"08:00:27": "VirtualBox",
	"00:03:FF": "Microsoft Virtual PC",
	"00:12:5A": "Microsoft Hyper-V",
	"00:15:5D": "Microsoft Hyper-V",
	"00:17:FA": "Microsoft Hyper-V",
	"00:1D:D8": "Microsoft Hyper-V",
	"00:25:AE": "Microsoft Hyper-V",
	"00:16:3E": "Xen",
	"52:54:00": "QEMU/KVM",
	"00:1A:4A": "Red Hat KVM",
	"02:00:00": "Amazon EC2 (legacy)",
	"02:01:00": "Amazon EC2",
	"12:00:00": "Amazon EC2",
	"12:01:00": "Amazon EC2",
	"42:01:0A": "Google Cloud",
	"00:0D:3A": "Microsoft Azure",
	"50:6B:8D": "Nutanix AHV",
	"BC:24:11": "Proxmox",
	"58:9C:FC": "bhyve",
}

// dmiVMKeywords is the fallback keyword list matched against DMI/SMBIOS
// string fields when firmware table scanning fails outright.
var dmiVMKeywords = []string{
	"vmware", "virtualbox", "qemu", "kvm", "hyper-v", "xen", "parallels", "innotek",
}

// kernelObjectPaths are the Windows device/pipe paths whose mere
// existence indicates a hypervisor's guest-integration driver.
var kernelObjectPaths = []string{
	`\\.\VBoxGuest`,
	`\\.\VBoxMiniRdrDN`,
	`\\.\HGFS`,
	`\\.\vmci`,
	`\\.\VmGenerationCounter`,
}
