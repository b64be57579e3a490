package main

import (
	"strings"

	"github.com/cuemby/localstor/pkg/types"
)

type bitName[T ~uint32 | ~uint64] struct {
	bit  T
	name string
}

// bits names every set bit of a status field, or "Unknown"
func bits[T ~uint32 | ~uint64](v T, names []bitName[T]) string {
	var set []string
	for _, n := range names {
		if v&n.bit != 0 {
			set = append(set, n.name)
		}
	}
	if len(set) == 0 {
		return "Unknown"
	}
	return strings.Join(set, ",")
}

func systemStatus(s types.SystemStatus) string {
	return bits(s, []bitName[types.SystemStatus]{
		{types.SystemStatusOK, "OK"},
		{types.SystemStatusDegraded, "Degraded"},
		{types.SystemStatusError, "Error"},
		{types.SystemStatusOther, "Other"},
	})
}

func diskStatus(s types.DiskStatus) string {
	return bits(s, []bitName[types.DiskStatus]{
		{types.DiskStatusOK, "OK"},
		{types.DiskStatusFree, "Free"},
	})
}

func batteryStatus(s types.BatteryStatus) string {
	return bits(s, []bitName[types.BatteryStatus]{
		{types.BatteryStatusOK, "OK"},
	})
}

func systemMode(m types.SystemMode) string {
	switch m {
	case types.SystemModeHardwareRAID:
		return "HW RAID"
	case types.SystemModeHBA:
		return "HBA"
	case types.SystemModeNoSupport:
		return "-"
	default:
		return "Unknown"
	}
}

func batteryType(t types.BatteryType) string {
	switch t {
	case types.BatteryTypeChemical:
		return "Chemical"
	case types.BatteryTypeCapacitor:
		return "Capacitor"
	default:
		return "Unknown"
	}
}
