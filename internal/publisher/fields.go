package publisher

import "github.com/lucaslui/telemd/internal/model"

// fields is the complete path table of the wire message. Each entry knows the
// value kind it accepts and how to place a value into the message.
var fields = []field{
	// dynamics
	{"dynamics.steer_col_angle", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().SteerColAngle, v) }},
	{"dynamics.fl_steer_angle", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FLSteerAngle, v) }},
	{"dynamics.fr_steer_angle", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FRSteerAngle, v) }},
	{"dynamics.flw_speed", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FLWSpeed, v) }},
	{"dynamics.frw_speed", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FRWSpeed, v) }},
	{"dynamics.blw_speed", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().BLWSpeed, v) }},
	{"dynamics.brw_speed", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().BRWSpeed, v) }},
	{"dynamics.fl_strain_gauge_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FLStrainGaugeV, v) }},
	{"dynamics.fr_strain_gauge_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FRStrainGaugeV, v) }},
	{"dynamics.bl_strain_gauge_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().BLStrainGaugeV, v) }},
	{"dynamics.br_strain_gauge_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().BRStrainGaugeV, v) }},
	{"dynamics.fl_pushrod_stress", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FLPushrodStress, v) }},
	{"dynamics.fr_pushrod_stress", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FRPushrodStress, v) }},
	{"dynamics.bl_pushrod_stress", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().BLPushrodStress, v) }},
	{"dynamics.br_pushrod_stress", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().BRPushrodStress, v) }},
	{"dynamics.fl_spring_displace", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FLSpringDisplace, v) }},
	{"dynamics.fr_spring_displace", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FRSpringDisplace, v) }},
	{"dynamics.bl_spring_displace", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().BLSpringDisplace, v) }},
	{"dynamics.br_spring_displace", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().BRSpringDisplace, v) }},
	{"dynamics.fl_ride_height", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FLRideHeight, v) }},
	{"dynamics.fr_ride_height", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FRRideHeight, v) }},
	{"dynamics.bl_ride_height", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().BLRideHeight, v) }},
	{"dynamics.br_ride_height", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().BRRideHeight, v) }},
	{"dynamics.fl_sprung_accel", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().FLSprungAccel, v) }},
	{"dynamics.fr_sprung_accel", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().FRSprungAccel, v) }},
	{"dynamics.bl_sprung_accel", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().BLSprungAccel, v) }},
	{"dynamics.br_sprung_accel", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().BRSprungAccel, v) }},
	{"dynamics.fl_unsprung_accel", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().FLUnsprungAccel, v) }},
	{"dynamics.fr_unsprung_accel", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().FRUnsprungAccel, v) }},
	{"dynamics.bl_unsprung_accel", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().BLUnsprungAccel, v) }},
	{"dynamics.br_unsprung_accel", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().BRUnsprungAccel, v) }},
	{"dynamics.fl_sprung_ang_rate", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().FLSprungAngRate, v) }},
	{"dynamics.fr_sprung_ang_rate", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().FRSprungAngRate, v) }},
	{"dynamics.bl_sprung_ang_rate", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().BLSprungAngRate, v) }},
	{"dynamics.br_sprung_ang_rate", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().BRSprungAngRate, v) }},
	{"dynamics.cent_mass_accel", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().CentMassAccel, v) }},
	{"dynamics.cent_mass_ang_rate", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().CentMassAngRate, v) }},
	{"dynamics.f_gps", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().FGPS, v) }},
	{"dynamics.f_gps_velocity", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FGPSVelocity, v) }},
	{"dynamics.f_gps_heading", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().FGPSHeading, v) }},
	{"dynamics.b_gps", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.dynamics().BGPS, v) }},
	{"dynamics.b_gps_velocity", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().BGPSVelocity, v) }},
	{"dynamics.b_gps_heading", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.dynamics().BGPSHeading, v) }},
	// controls
	{"controls.apps1_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().APPS1V, v) }},
	{"controls.apps2_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().APPS2V, v) }},
	{"controls.apps1_t", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().APPS1T, v) }},
	{"controls.apps2_t", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().APPS2T, v) }},
	{"controls.bpps1_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().BPPS1V, v) }},
	{"controls.bpps2_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().BPPS2V, v) }},
	{"controls.bpps1_t", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().BPPS1T, v) }},
	{"controls.bpps2_t", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().BPPS2T, v) }},
	{"controls.bse1_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().BSE1V, v) }},
	{"controls.bse2_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().BSE2V, v) }},
	{"controls.bse3_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().BSE3V, v) }},
	{"controls.brake_pressure_f", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().BrakePressureF, v) }},
	{"controls.brake_pressure_rbll", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().BrakePressureRBLL, v) }},
	{"controls.brake_pressure_rall", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().BrakePressureRALL, v) }},
	{"controls.brake_bias", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.controls().BrakeBias, v) }},
	// pack
	{"pack.hv_pack_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.pack().HVPackV, v) }},
	{"pack.hv_tractive_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.pack().HVTractiveV, v) }},
	{"pack.hv_c", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.pack().HVC, v) }},
	{"pack.hv_soc", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.pack().HVSOC, v) }},
	{"pack.lv_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.pack().LVV, v) }},
	{"pack.lv_c", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.pack().LVC, v) }},
	{"pack.contactor_state", model.KindInt, func(m *SensorData, v model.Value) { setInt(&m.pack().ContactorState, v) }},
	{"pack.avg_cell_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.pack().AvgCellV, v) }},
	{"pack.avg_cell_temp", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.pack().AvgCellTemp, v) }},
	// diagnostics_high
	{"diagnostics_high.apps1_disconnect", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().APPS1Disconnect, v) }},
	{"diagnostics_high.apps2_disconnect", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().APPS2Disconnect, v) }},
	{"diagnostics_high.apps1_out_range", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().APPS1OutRange, v) }},
	{"diagnostics_high.apps2_out_range", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().APPS2OutRange, v) }},
	{"diagnostics_high.apps_mismatch", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().APPSMismatch, v) }},
	{"diagnostics_high.apps_implause", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().APPSImplause, v) }},
	{"diagnostics_high.bpps1_disconnect", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().BPPS1Disconnect, v) }},
	{"diagnostics_high.bpps2_disconnect", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().BPPS2Disconnect, v) }},
	{"diagnostics_high.bpps1_out_range", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().BPPS1OutRange, v) }},
	{"diagnostics_high.bpps2_out_range", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().BPPS2OutRange, v) }},
	{"diagnostics_high.bpps_mismatch", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().BPPSMismatch, v) }},
	{"diagnostics_high.bse1_disconnect", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().BSE1Disconnect, v) }},
	{"diagnostics_high.bse2_disconnect", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().BSE2Disconnect, v) }},
	{"diagnostics_high.bse1_out_range", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().BSE1OutRange, v) }},
	{"diagnostics_high.bse2_out_range", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagHigh().BSE2OutRange, v) }},
	// diagnostics_low
	{"diagnostics_low.bmb_comm_error", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagLow().BMBCommError, v) }},
	{"diagnostics_low.imd_gnd_isolation_error", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagLow().IMDGndIsolationError, v) }},
	{"diagnostics_low.shutdown_leg1", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagLow().ShutdownLeg1, v) }},
	{"diagnostics_low.shutdown_leg2", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagLow().ShutdownLeg2, v) }},
	{"diagnostics_low.shutdown_leg3", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagLow().ShutdownLeg3, v) }},
	{"diagnostics_low.shutdown_leg4", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagLow().ShutdownLeg4, v) }},
	{"diagnostics_low.batt_over_c", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagLow().BattOverC, v) }},
	{"diagnostics_low.cell_over_v", model.KindInt, func(m *SensorData, v model.Value) { setInt(&m.diagLow().CellOverV, v) }},
	{"diagnostics_low.cell_under_v", model.KindInt, func(m *SensorData, v model.Value) { setInt(&m.diagLow().CellUnderV, v) }},
	{"diagnostics_low.cell_open_wire", model.KindInt, func(m *SensorData, v model.Value) { setInt(&m.diagLow().CellOpenWire, v) }},
	{"diagnostics_low.cell_damaged", model.KindInt, func(m *SensorData, v model.Value) { setInt(&m.diagLow().CellDamaged, v) }},
	{"diagnostics_low.thermistor_damaged", model.KindInt, func(m *SensorData, v model.Value) { setInt(&m.diagLow().ThermistorDamaged, v) }},
	{"diagnostics_low.tractive_contactor_error", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagLow().TractiveContactorError, v) }},
	{"diagnostics_low.precharge_fail", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagLow().PrechargeFail, v) }},
	{"diagnostics_low.cells_v_balanced", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.diagLow().CellsVBalanced, v) }},
	{"diagnostics_low.cell_min_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.diagLow().CellMinV, v) }},
	{"diagnostics_low.cell_max_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.diagLow().CellMaxV, v) }},
	{"diagnostics_low.batt_v", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.diagLow().BattV, v) }},
	{"diagnostics_low.batt_c", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.diagLow().BattC, v) }},
	{"diagnostics_low.cells_v", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.diagLow().CellsV, v) }},
	// thermal
	{"thermal.motor_loop_flow_rate", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().MotorLoopFlowRate, v) }},
	{"thermal.motor_loop_motor_temp", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().MotorLoopMotorTemp, v) }},
	{"thermal.motor_loop_inverter_temp", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().MotorLoopInverterTemp, v) }},
	{"thermal.motor_loop_rad_temp", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().MotorLoopRadTemp, v) }},
	{"thermal.motor_loop_rad_fan_speed", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().MotorLoopRadFanSpeed, v) }},
	{"thermal.batt_loop_batt_temp", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().BattLoopBattTemp, v) }},
	{"thermal.batt_loop_rad_temp", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().BattLoopRadTemp, v) }},
	{"thermal.batt_loop_rad_fan_speed", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().BattLoopRadFanSpeed, v) }},
	{"thermal.inverter_temp", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().InverterTemp, v) }},
	{"thermal.motor_temp", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().MotorTemp, v) }},
	{"thermal.ambient_temp", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().AmbientTemp, v) }},
	{"thermal.discharge_r_temp", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().DischargeRTemp, v) }},
	{"thermal.bus_bar_temp1", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().BusBarTemp1, v) }},
	{"thermal.bus_bar_temp2", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().BusBarTemp2, v) }},
	{"thermal.bus_bar_temp3", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().BusBarTemp3, v) }},
	{"thermal.precharge_r_temp", model.KindFloat, func(m *SensorData, v model.Value) { setFloat(&m.thermal().PrechargeRTemp, v) }},
	{"thermal.batt_over_temp", model.KindBool, func(m *SensorData, v model.Value) { setBool(&m.thermal().BattOverTemp, v) }},
	{"thermal.cells_temp", model.KindVector, func(m *SensorData, v model.Value) { setVector(&m.thermal().CellsTemp, v) }},
}
