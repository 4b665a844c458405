package httpapi

// User-facing Thai messages, kept verbatim from the UI copy.
const (
	msgFillAll      = "กรุณากรอกข้อมูลให้ครบถ้วน"
	msgUnauthorized = "Unauthorized"
	msgFetchFailed  = "เกิดข้อผิดพลาดในการดึงข้อมูล"
	msgEditFailed   = "เกิดข้อผิดพลาดในการแก้ไขข้อมูล"

	msgLoginOK      = "เข้าสู่ระบบสำเร็จ"
	msgLogoutOK     = "ออกจากระบบเรียบร้อย"
	msgUserNotFound = "ไม่พบผู้ใช้งาน"
	msgBadPassword  = "รหัสผ่านไม่ถูกต้อง"

	msgDuplicateStudentID = "รหัสนักศึกษานี้มีอยู่ในระบบแล้ว"
	msgStudentNotFound    = "ไม่พบข้อมูลนักศึกษา"
	msgSpecifyStudent     = "กรุณาระบุนักศึกษาที่ต้องการลบ"
	msgStudentDeleted     = "ลบนักศึกษาเรียบร้อยแล้ว"
	msgStudentAddFailed   = "เกิดข้อผิดพลาดในการเพิ่มนักศึกษา"

	msgUploadFile      = "กรุณาอัพโหลดไฟล์"
	msgIncompleteRows  = "พบข้อมูลไม่ครบถ้วน"
	msgImportFailed    = "เกิดข้อผิดพลาดในการนำเข้าข้อมูล"

	msgEventNotFound     = "ไม่พบกิจกรรมที่ต้องการ"
	msgSpecifyEvent      = "กรุณาระบุกิจกรรม"
	msgSpecifyEventDel   = "กรุณาระบุกิจกรรมที่ต้องการลบ"
	msgEventDeleted      = "ลบกิจกรรมเรียบร้อยแล้ว"
	msgEventCreateFailed = "เกิดข้อผิดพลาดในการสร้างกิจกรรม"
	msgEventDeleteFailed = "เกิดข้อผิดพลาดในการลบกิจกรรม"

	msgBadStatus          = "สถานะไม่ถูกต้อง"
	msgAttendanceNotFound = "ไม่พบข้อมูลการเข้าร่วมกิจกรรม"
	msgStatusUpdateFailed = "เกิดข้อผิดพลาดในการอัพเดทสถานะ"

	msgDuplicateClub     = "มีชมรมนี้อยู่ในระบบแล้ว"
	msgSpecifyClub       = "กรุณาระบุชมรม"
	msgSpecifyClubDel    = "กรุณาระบุชมรมที่ต้องการลบ"
	msgClubDeleted       = "ลบชมรมเรียบร้อยแล้ว"
	msgClubCreateFailed  = "เกิดข้อผิดพลาดในการสร้างชมรม"
	msgClubDeleteFailed  = "เกิดข้อผิดพลาดในการลบชมรม"

	msgDuplicateMember  = "นักศึกษาเป็นสมาชิกชมรมนี้อยู่แล้ว"
	msgMemberAddFailed  = "เกิดข้อผิดพลาดในการเพิ่มสมาชิก"
	msgMemberDeleted    = "ลบสมาชิกเรียบร้อยแล้ว"
	msgMemberDelFailed  = "เกิดข้อผิดพลาดในการลบสมาชิก"
	msgSpecifyMemberDel = "กรุณาระบุข้อมูลให้ครบถ้วน"

	msgWeekNotFound         = "ไม่พบข้อมูลสัปดาห์"
	msgWeekCreateFailed     = "เกิดข้อผิดพลาดในการสร้างสัปดาห์"
	msgCheckinNotFound      = "ไม่พบข้อมูลการเช็คชื่อ"
	msgCheckinUpdateFailed  = "เกิดข้อผิดพลาดในการอัพเดทการเช็คชื่อ"

	msgDuplicateUsername = "ชื่อผู้ใช้นี้มีอยู่ในระบบแล้ว"
	msgTargetUserMissing = "ไม่พบผู้ใช้ในระบบ"
	msgSpecifyUserEdit   = "กรุณาระบุผู้ใช้ที่ต้องการแก้ไข"
	msgSpecifyUserDel    = "กรุณาระบุผู้ใช้ที่ต้องการลบ"
	msgSelfDelete        = "ไม่สามารถลบบัญชีของตัวเองได้"
	msgUserCreated       = "สร้างผู้ใช้เรียบร้อยแล้ว"
	msgUserUpdated       = "แก้ไขข้อมูลเรียบร้อยแล้ว"
	msgUserDeleted       = "ลบผู้ใช้เรียบร้อยแล้ว"
	msgUserCreateFailed  = "เกิดข้อผิดพลาดในการสร้างผู้ใช้"
	msgUserDeleteFailed  = "เกิดข้อผิดพลาดในการลบผู้ใช้"
)
