package decode

// Builtin returns the production signal table.
func Builtin() []Binding {
	var bs []Binding
	add := func(id uint32, path string, s Spec) {
		bs = append(bs, Binding{FrameID: id, Path: path, Spec: s})
	}
	slot := func(id uint32, path string, s Spec, index, size int) {
		bs = append(bs, Binding{FrameID: id, Path: path, Spec: s, Index: index, Size: size})
	}
	accel3 := func(scale float64) Spec {
		return Vec(SInt(0, 2, scale), SInt(2, 4, scale), SInt(4, 6, scale))
	}

	// steering
	add(0xA05, "dynamics.steer_col_angle", SInt(0, 2, 0.004))
	add(0x400, "dynamics.fl_steer_angle", SInt(0, 2, 0.001))
	add(0x401, "dynamics.fr_steer_angle", SInt(0, 2, 0.001))

	corners := []struct {
		wheel  uint32
		sprung uint32
		unspr  uint32
		rate   uint32
		pos    string
	}{
		{0x406, 0x500, 0x402, 0x504, "fl"},
		{0x407, 0x501, 0x403, 0x505, "fr"},
		{0x408, 0x502, 0x404, 0x506, "bl"},
		{0x409, 0x503, 0x405, 0x507, "br"},
	}
	for _, c := range corners {
		add(c.wheel, "dynamics."+c.pos+"w_speed", SInt(0, 2, 0.01))
		add(c.wheel, "dynamics."+c.pos+"_strain_gauge_v", SInt(2, 4, 0.0002))
		add(c.wheel, "dynamics."+c.pos+"_pushrod_stress", SInt(4, 6, 0.5))
		add(c.wheel, "dynamics."+c.pos+"_spring_displace", UInt(6, 8, 0.001))

		add(c.sprung, "dynamics."+c.pos+"_ride_height", UInt(6, 8, 0.002))
		for axis := 0; axis < 3; axis++ {
			slot(c.sprung, "dynamics."+c.pos+"_sprung_accel", SInt(axis*2, axis*2+2, 0.001), axis, 3)
		}

		add(c.unspr, "dynamics."+c.pos+"_unsprung_accel", accel3(0.001))
		add(c.rate, "dynamics."+c.pos+"_sprung_ang_rate", accel3(0.03))
	}

	// center of mass IMU not on the bus yet
	add(0x111, "dynamics.cent_mass_accel", Zeros(3))
	add(0x112, "dynamics.cent_mass_ang_rate", Zeros(3))

	// pedal boxes
	pedals := []struct {
		id     uint32
		name   string
		faults []string
	}{
		{0xF1, "apps", []string{"apps1_disconnect", "apps2_disconnect", "apps1_out_range", "apps2_out_range", "apps_mismatch", "apps_implause"}},
		{0xF3, "bpps", []string{"bpps1_disconnect", "bpps2_disconnect", "bpps1_out_range", "bpps2_out_range", "bpps_mismatch"}},
	}
	for _, p := range pedals {
		add(p.id, "controls."+p.name+"1_v", UInt(0, 2, 0.0001))
		add(p.id, "controls."+p.name+"2_v", UInt(2, 4, 0.0001))
		add(p.id, "controls."+p.name+"1_t", UInt(4, 6, 0.01))
		add(p.id, "controls."+p.name+"2_t", UInt(6, 8, 0.01))
		for bit, f := range p.faults {
			add(p.id, "diagnostics_high."+f, Bit(2, uint8(bit)))
		}
	}

	add(0x100, "controls.bse1_v", UInt(0, 2, 0.0001))
	add(0x100, "controls.bse2_v", UInt(2, 4, 0.0001))
	add(0x100, "controls.bse3_v", UInt(4, 6, 0.0001))

	add(0xA04, "controls.brake_pressure_f", UInt(0, 2, 0.05))
	add(0xA04, "controls.brake_pressure_rbll", UInt(2, 4, 0.05))
	add(0xA04, "controls.brake_pressure_rall", UInt(4, 6, 0.05))
	add(0xA04, "controls.brake_bias", UInt(6, 7, 0.01))
	for bit, f := range []string{"bse1_disconnect", "bse2_disconnect", "bse1_out_range", "bse2_out_range"} {
		add(0xA04, "diagnostics_high."+f, Bit(7, uint8(bit)))
	}

	// accumulator
	add(0x200, "pack.hv_pack_v", UInt(0, 2, 0.01))
	add(0x200, "pack.hv_tractive_v", UInt(2, 4, 0.01))
	add(0x200, "pack.hv_c", UInt(4, 6, 0.01))
	add(0x200, "pack.hv_soc", UInt(6, 8, 0.01))

	add(0x203, "pack.lv_v", UInt(0, 2, 0.01))
	add(0x203, "pack.lv_c", UInt(2, 4, 0.01))
	add(0x203, "pack.contactor_state", Byte(4))
	add(0x203, "pack.avg_cell_v", UInt(5, 7, 0.001))
	add(0x203, "pack.avg_cell_temp", SInt(7, 8, 0.1))

	for i, f := range []string{"bmb_comm_error", "imd_gnd_isolation_error", "shutdown_leg1", "shutdown_leg2", "shutdown_leg3", "shutdown_leg4"} {
		add(0x202, "diagnostics_low."+f, Flag(i))
	}

	add(0x204, "diagnostics_low.batt_over_c", Flag(0))
	add(0x204, "diagnostics_low.cell_over_v", Byte(1))
	add(0x204, "diagnostics_low.cell_under_v", Byte(2))
	add(0x204, "diagnostics_low.cell_open_wire", Byte(3))
	add(0x204, "diagnostics_low.cell_damaged", Byte(4))
	add(0x204, "diagnostics_low.thermistor_damaged", Byte(5))
	add(0x204, "diagnostics_low.tractive_contactor_error", Flag(6))
	add(0x204, "diagnostics_low.precharge_fail", Flag(7))

	add(0x205, "diagnostics_low.cells_v_balanced", Flag(0))
	add(0x205, "diagnostics_low.cell_min_v", UInt(1, 3, 0.001))
	add(0x205, "diagnostics_low.cell_max_v", UInt(3, 5, 0.001))
	add(0x205, "diagnostics_low.batt_v", UInt(5, 7, 0.01))
	add(0x205, "diagnostics_low.batt_c", SInt(7, 8, 0.1))

	// cooling
	add(0x102, "thermal.motor_loop_flow_rate", UInt(0, 2, 0.1))
	add(0x102, "thermal.motor_loop_motor_temp", SInt(2, 4, 0.01))
	add(0x102, "thermal.motor_loop_inverter_temp", SInt(4, 6, 0.01))
	add(0x102, "thermal.motor_loop_rad_temp", SInt(6, 8, 0.01))
	add(0x106, "thermal.motor_loop_rad_fan_speed", UInt(0, 2, 0.2))

	add(0x103, "thermal.batt_loop_batt_temp", SInt(0, 2, 0.01))
	add(0x103, "thermal.batt_loop_rad_temp", SInt(2, 4, 0.01))
	add(0x103, "thermal.batt_loop_rad_fan_speed", UInt(4, 6, 0.2))

	add(0x104, "thermal.inverter_temp", SInt(0, 2, 0.01))
	add(0x104, "thermal.motor_temp", SInt(2, 4, 0.01))
	add(0x104, "thermal.ambient_temp", SInt(4, 6, 0.01))
	add(0x104, "thermal.discharge_r_temp", SInt(6, 8, 0.01))

	add(0x201, "thermal.bus_bar_temp1", UInt(0, 2, 0.1))
	add(0x201, "thermal.bus_bar_temp2", UInt(2, 4, 0.1))
	add(0x201, "thermal.bus_bar_temp3", UInt(4, 6, 0.1))
	add(0x201, "thermal.precharge_r_temp", UInt(6, 8, 0.1))

	add(0x107, "thermal.batt_over_temp", Flag(0))

	// gps
	for _, g := range []struct {
		id  uint32
		pos string
	}{{0x110, "f"}, {0x101, "b"}} {
		add(g.id, "dynamics."+g.pos+"_gps", Vec(SInt(0, 2, 0.001), SInt(2, 4, 0.001)))
		add(g.id, "dynamics."+g.pos+"_gps_velocity", UInt(4, 6, 0.001))
		add(g.id, "dynamics."+g.pos+"_gps_heading", UInt(6, 8, 0.001))
	}

	// legacy shutdown-leg frame, same field as 0x202
	add(0x6CA, "diagnostics_low.shutdown_leg1", Flag(0))

	return bs
}
